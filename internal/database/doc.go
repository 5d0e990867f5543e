// Package database stores user accounts, group memberships, and sessions
// in SQLite. Album permissions do not live here; they come from manifest
// files in the media tree. The database only answers who a request is.
package database
