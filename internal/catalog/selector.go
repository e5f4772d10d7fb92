package catalog

import (
	"crypto/sha256"
	"math/big"
	"math/rand"
)

// Pick maps seed to an item. The same seed on the same catalog always yields
// the same item. It returns nil on an empty catalog.
func (c *Catalog) Pick(seed string) *Item {
	if len(c.items) == 0 {
		return nil
	}
	sum := sha256.Sum256([]byte(seed))
	n := new(big.Int).SetBytes(sum[:])
	idx := n.Mod(n, big.NewInt(int64(len(c.items)))).Int64()
	it := c.items[idx]
	return &it
}

// DailySeed is the seed shared by every user for a kind on a given day.
func DailySeed(c *Catalog, day string) string {
	return string(c.kind) + "-" + day
}

// Random returns a uniformly random item, or nil on an empty catalog.
func (c *Catalog) Random() *Item {
	if len(c.items) == 0 {
		return nil
	}
	it := c.items[rand.Intn(len(c.items))]
	return &it
}
