// Package server exposes the HTTP API for authentication, task management,
// and the workflow endpoints under /OrderManagment. All routes except login
// and health require a bearer token issued by POST /auth/login.
package server
