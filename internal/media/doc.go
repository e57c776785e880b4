// Package media models probed inputs and requested outputs.
//
// Key types:
//   - Stream: one elementary stream (video/audio/subtitle) with codec,
//     language, geometry and subtitle classification
//   - TagMap: the flat key/value map produced by the probing tool
//   - Input: an ordered stream list plus selection state and the ffmpeg
//     input specification (path, pipe, or concat)
//   - Output: the requested output type with naming policy
//
// Stream selection defaults follow audience-language rules; explicit user
// choices are never overwritten by recomputation.
package media
