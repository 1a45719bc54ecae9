// Package extract converts normalized content into candidate entities.
// It builds the extraction prompt, parses and repairs the model's JSON
// response, and merges duplicate candidates before handing them to the
// resolver.
package extract
