// Package preflight provides readiness checks for the filesystem paths and
// devices discforge depends on, so a doomed multi-hour transcode fails
// before it starts rather than at the final write.
package preflight
