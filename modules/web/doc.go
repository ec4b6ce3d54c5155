// Package web holds the helpers shared by the HTTP API modules: JSON
// responses, CORS, and bearer-token authentication.
package web
