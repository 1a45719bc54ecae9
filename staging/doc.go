// Package staging is the human review queue between extraction and the
// vault. Low-confidence or conflicting candidates wait here until approved
// or rejected.
package staging
