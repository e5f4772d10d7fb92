// Package catalog holds the static tarot and rune reference data and the
// selectors that pick from it.
package catalog

import (
	"strings"

	"aura_oracle/internal/domain"
)

// Version identifies the catalog contents. Bump it when items or assets change.
const Version = 1

// Item is one selectable card or rune.
type Item struct {
	Kind  domain.Kind `json:"kind"`
	Name  string      `json:"name"`
	Asset string      `json:"asset"`
}

// Catalog is an ordered, immutable list of items of one kind.
type Catalog struct {
	kind  domain.Kind
	items []Item
	index map[string]int
}

// New builds a catalog of kind from (name, asset) pairs in order.
func New(kind domain.Kind, pairs [][2]string) *Catalog {
	c := &Catalog{kind: kind, index: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		c.index[normalize(p[0])] = len(c.items)
		c.items = append(c.items, Item{Kind: kind, Name: p[0], Asset: p[1]})
	}
	return c
}

// Kind returns the draw kind of the catalog.
func (c *Catalog) Kind() domain.Kind { return c.kind }

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Items returns a copy of the items in catalog order.
func (c *Catalog) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Lookup finds an item by name, ignoring case and repeated whitespace.
func (c *Catalog) Lookup(name string) (Item, bool) {
	i, ok := c.index[normalize(name)]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Canonical returns the catalog spelling of name, or name trimmed when unknown.
func (c *Catalog) Canonical(name string) string {
	if it, ok := c.Lookup(name); ok {
		return it.Name
	}
	return strings.Join(strings.Fields(name), " ")
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Set groups the catalogs by draw kind.
type Set map[domain.Kind]*Catalog

// Default returns the built-in tarot and rune catalogs.
func Default() Set {
	return Set{
		domain.KindTarot: New(domain.KindTarot, tarot),
		domain.KindRune:  New(domain.KindRune, runes),
	}
}

// Get returns the catalog for kind, or an empty catalog when none exists.
func (s Set) Get(kind domain.Kind) *Catalog {
	if c, ok := s[kind]; ok && c != nil {
		return c
	}
	return New(kind, nil)
}

var tarot = [][2]string{
	{"The Fool", "cards/tarot/0-the-fool.jpg"},
	{"The Magician", "cards/tarot/1-the-magician.jpg"},
	{"The High Priestess", "cards/tarot/2-the-high-priestess.jpg"},
	{"The Empress", "cards/tarot/3-the-empress.jpg"},
	{"The Emperor", "cards/tarot/4-the-emperor.jpg"},
	{"The Hierophant", "cards/tarot/5-the-hierophant.jpg"},
	{"The Lovers", "cards/tarot/6-the-lovers.jpg"},
	{"The Chariot", "cards/tarot/7-the-chariot.jpg"},
	{"Strength", "cards/tarot/8-strength.jpg"},
	{"The Hermit", "cards/tarot/9-the-hermit.jpg"},
	{"Wheel of Fortune", "cards/tarot/10-wheel-of-fortune.jpg"},
	{"Justice", "cards/tarot/11-justice.jpg"},
	{"The Hanged Man", "cards/tarot/12-the-hanged-man.jpg"},
	{"Death", "cards/tarot/13-death.jpg"},
	{"Temperance", "cards/tarot/14-temperance.jpg"},
	{"The Devil", "cards/tarot/15-the-devil.jpg"},
	{"The Tower", "cards/tarot/16-the-tower.jpg"},
	{"The Star", "cards/tarot/17-the-star.jpg"},
	{"The Moon", "cards/tarot/18-the-moon.jpg"},
	{"The Sun", "cards/tarot/19-the-sun.jpg"},
	{"Judgement", "cards/tarot/20-judgement.jpg"},
	{"The World", "cards/tarot/21-the-world.jpg"},
}

var runes = [][2]string{
	{"Fehu", "cards/runes/fehu.svg"},
	{"Uruz", "cards/runes/uruz.svg"},
	{"Thurisaz", "cards/runes/thurisaz.svg"},
	{"Ansuz", "cards/runes/ansuz.svg"},
	{"Raidho", "cards/runes/raidho.svg"},
	{"Kenaz", "cards/runes/kenaz.svg"},
	{"Gebo", "cards/runes/gebo.svg"},
	{"Wunjo", "cards/runes/wunjo.svg"},
	{"Hagalaz", "cards/runes/hagalaz.svg"},
	{"Nauthiz", "cards/runes/nauthiz.svg"},
	{"Isa", "cards/runes/isa.svg"},
	{"Jera", "cards/runes/jera.svg"},
	{"Eihwaz", "cards/runes/eihwaz.svg"},
	{"Perthro", "cards/runes/perthro.svg"},
	{"Algiz", "cards/runes/algiz.svg"},
	{"Sowilo", "cards/runes/sowilo.svg"},
	{"Tiwaz", "cards/runes/tiwaz.svg"},
	{"Berkano", "cards/runes/berkano.svg"},
	{"Ehwaz", "cards/runes/ehwaz.svg"},
	{"Mannaz", "cards/runes/mannaz.svg"},
	{"Laguz", "cards/runes/laguz.svg"},
	{"Ingwaz", "cards/runes/ingwaz.svg"},
	{"Othala", "cards/runes/othala.svg"},
	{"Dagaz", "cards/runes/dagaz.svg"},
}
