// Package email sends transactional mail (magic links) through Postmark,
// with a logging dev sender for environments without delivery credentials.
package email
