// Package client is the typed HTTP client used by the command line tools. It
// reads the bearer token from the local session store on each call and tears
// the session down when the server rejects it.
package client
