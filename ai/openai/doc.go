// Package openai implements the extraction capability against
// OpenAI-compatible chat APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// The implementation deliberately stays a thin transport. Prompt
// construction and response parsing live in the extract package so they can
// be tested against canned responses without a live model.
package openai
