// Package handlers implements the JSON API: authentication, album
// browsing, media serving, and the admin reload.
package handlers
