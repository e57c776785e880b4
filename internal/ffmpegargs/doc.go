// Package ffmpegargs computes command-line argument lists for the external
// transcoder and prober.
//
// Everything here is a pure function over stream descriptors and settings:
// probing hints, input/output specifications, audio options, filter chains
// (resize, letterbox, rotation, subtitle burn-in) and two-pass bitrate-capped
// encoding. No process is ever started from this package.
package ffmpegargs
