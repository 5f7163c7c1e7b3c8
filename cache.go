package charref

import (
	"strings"

	"github.com/dgraph-io/ristretto"
	"github.com/zeebo/xxh3"
)

// A Cache remembers the results of decoding strings that contain character
// references, for programs that see the same text over and over (page
// titles, link text, feed items). Strings with no '&' are returned
// immediately without touching the cache.
type Cache struct {
	decoder *Decoder
	cache   *ristretto.Cache
}

// NewCache returns a Cache for d that holds up to maxCost bytes of input and
// output text.
func NewCache(d *Decoder, maxCost int64) (*Cache, error) {
	if d == nil {
		d = defaultDecoder
	}

	counters := maxCost / 8
	if counters < 1000 {
		counters = 1000
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        counters,
		MaxCost:            maxCost,
		BufferItems:        64,
		KeyToHash:          keyToHash,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &Cache{
		decoder: d,
		cache:   c,
	}, nil
}

func keyToHash(key interface{}) (uint64, uint64) {
	h := xxh3.HashString128(key.(string))
	return h.Lo, h.Hi
}

// Decode returns the same result as the underlying Decoder's Decode method.
func (c *Cache) Decode(s string) string {
	if strings.IndexByte(s, '&') == -1 {
		return s
	}

	if v, ok := c.cache.Get(s); ok {
		return v.(string)
	}

	result := c.decoder.Decode(s)
	c.cache.Set(s, result, int64(len(s)+len(result)))
	return result
}

// Wait blocks until pending additions to the cache have been applied.
func (c *Cache) Wait() {
	c.cache.Wait()
}

// Close stops the cache's background goroutines. The Cache must not be used
// afterward.
func (c *Cache) Close() {
	c.cache.Close()
}
