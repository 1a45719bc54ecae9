package badger

import (
	"fmt"

	"github.com/poiesic/notegraph/core"
)

// Key prefixes for different data types
const (
	stagingItemPrefix  = "stgitm"
	contentCachePrefix = "ctcach"
)

// makeStagingItemKey generates a key for a staging item by ID.
func makeStagingItemKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", stagingItemPrefix, id))
}

// makeContentCacheKey generates a key for a cached content unit.
func makeContentCacheKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", contentCachePrefix, id))
}
