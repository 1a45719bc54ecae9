// Package whisper implements the transcription capability against a local
// whisper server's OpenAI-compatible HTTP API.
package whisper
