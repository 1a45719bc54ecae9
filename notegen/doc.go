// Package notegen renders resolved entities into markdown notes and keeps
// the backlink relation symmetric: whenever a committed body links to a
// note, that note's backlink list records the reverse direction. Writes for
// one content unit accumulate in a batch and land all-or-nothing.
package notegen
