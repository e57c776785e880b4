// Package services carries cross-cutting service conventions: error
// classification sentinels shared by every component, and context keys used
// to correlate log records with the job and action that produced them.
package services
