// Package content turns source references into normalized content units.
// It classifies URLs by shape, delegates audio and video to the
// transcription capability, strips articles to plain text, and caches the
// result so re-ingesting a source never repeats the expensive work.
package content
