// Package logging wraps log/slog with discforge conventions.
//
// It provides typed attribute helpers, standardized field names for job and
// action correlation, context propagation of those fields, and a console
// handler that colors output only when attached to a terminal.
package logging
