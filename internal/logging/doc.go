// Package logging configures structured slog output for the daemon and CLI.
//
// It provides a console handler that renders "timestamp LEVEL component: msg
// key=value" lines and a JSON handler for machine consumption, selected by
// config. Attribute helpers and the standardized field keys keep log output
// consistent across packages; NewComponentLogger tags a logger with the
// component attribute the console handler folds into the prefix.
package logging
