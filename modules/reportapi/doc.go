// Package reportapi exposes PDF report generation behind the monthly
// usage quota.
package reportapi
