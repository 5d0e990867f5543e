// Package middleware provides the HTTP request logging and metrics wrappers
// applied to every route.
package middleware
