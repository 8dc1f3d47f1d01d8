// Package openaistt transcribes audio chunks through the OpenAI audio API as
// an alternative to running the whisper CLI locally.
package openaistt
