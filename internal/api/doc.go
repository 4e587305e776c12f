// Package api defines the JSON wire types shared by the HTTP server and the
// typed client, plus converters from the storage models.
package api
