package manifest

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of distinct manifests kept in a ParseCache.
const DefaultCacheSize = 512

// ParseCache memoizes parse results keyed by the SHA-256 of the manifest
// text, so repeated graph builds over a mostly unchanged corpus skip
// re-parsing. Callers must treat returned slices as read-only.
type ParseCache struct {
	parser *Parser
	cache  *lru.Cache[string, []Declaration]
}

// NewParseCache wraps a parser with an LRU of the given size. A size of
// zero or less selects DefaultCacheSize.
func NewParseCache(parser *Parser, size int) (*ParseCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []Declaration](size)
	if err != nil {
		return nil, err
	}
	return &ParseCache{
		parser: parser,
		cache:  cache,
	}, nil
}

// Parse returns the declarations for content, parsing at most once per
// distinct text.
func (c *ParseCache) Parse(content string) []Declaration {
	sum := sha256.Sum256([]byte(content))
	key := hex.EncodeToString(sum[:])

	if decls, ok := c.cache.Get(key); ok {
		return decls
	}

	decls := c.parser.Parse(content)
	c.cache.Add(key, decls)
	return decls
}

// Len reports how many parse results are currently cached.
func (c *ParseCache) Len() int {
	return c.cache.Len()
}
