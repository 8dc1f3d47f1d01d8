// Package ffmpeg wraps FFmpeg decode checks used to verify that fetched audio
// chunks are playable before they are handed to transcription.
package ffmpeg
