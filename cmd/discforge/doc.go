// Command discforge converts media files into DVD images, device MP4s, AVIs
// and SubRip subtitles by orchestrating ffmpeg, dvdauthor, mkisofs and
// growisofs.
package main
