// Package daemon ties the stores, notifier, and HTTP API into a single
// lifecycle with flock-based locking to prevent multiple instances from
// sharing the same databases.
package daemon
