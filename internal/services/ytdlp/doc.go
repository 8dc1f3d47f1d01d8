// Package ytdlp wraps the yt-dlp CLI for fetching time-bounded audio chunks
// from video sources. Segments are extracted to MP3 via yt-dlp's FFmpeg
// post-processor so the artifact contains only the requested time window.
package ytdlp
