// Package pipeline wires normalization, extraction, resolution, note
// generation and the staging gate into one ingestion run. Sources are
// normalized and extracted concurrently; vault commits happen one unit at a
// time under the vault lock.
package pipeline
