// Package application provides application initialization and dependency
// wiring. It selects the record store backend, builds handlers, routers,
// and the HTTP server, keeping the main package focused on CLI parsing and
// orchestration.
package application
