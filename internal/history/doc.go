// Package history journals job runs in a SQLite database so past
// transcodes can be listed, inspected and pruned from the CLI.
package history
