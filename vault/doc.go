// Package vault owns the persisted note store: parsing and rendering the
// markdown note format (YAML frontmatter plus wikilinked body), atomic batch
// writes, the single-writer advisory lock, and the immutable index snapshot
// that resolution reads.
package vault
