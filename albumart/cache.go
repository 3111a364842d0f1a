package albumart

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gigurra/groovebox/metadata"
)

const cacheSize = 128

// Cache memoizes rendered art per track path so scrolling the library
// doesn't re-decode covers.
type Cache struct {
	arts *lru.Cache[string, *Art]
}

func NewCache() *Cache {
	arts, _ := lru.New[string, *Art](cacheSize)
	return &Cache{arts: arts}
}

// For returns the art for a track, decoding its embedded cover on first
// use and falling back to placeholder art when there is none or it is
// unreadable.
func (c *Cache) For(path string) *Art {
	if art, ok := c.arts.Get(path); ok {
		return art
	}

	art := c.load(path)
	c.arts.Add(path, art)
	return art
}

func (c *Cache) load(path string) *Art {
	meta, err := metadata.Read(path)
	if err != nil || len(meta.CoverArt) == 0 {
		return Placeholder(path)
	}
	art, err := Decode(meta.CoverArt)
	if err != nil {
		return Placeholder(path)
	}
	return art
}
