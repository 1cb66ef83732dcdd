// Package manifest compiles the dataset and override inputs into the
// canonical card manifest, serializes it deterministically, and reads
// compiled manifests back for the sheet generation path.
package manifest

import (
	"sort"
	"strings"

	"github.com/multiaccess-studios/proxyprint/internal/card"
)

// LocalImage is a compiled image-source override for one printing.
type LocalImage struct {
	ID    int    `toml:"id"`
	Group string `toml:"group"`
	Face  int    `toml:"face,omitempty"`
	URL   string `toml:"url"`
}

// Remap records a compiled legacy-id redirection. The `from` record itself no
// longer exists in the manifest; the table survives so decklist imports can
// redirect superseded ids.
type Remap struct {
	From int `toml:"from"`
	To   int `toml:"to"`
}

// Group is one locale/edition namespace of the manifest.
type Group struct {
	Group   string        `toml:"group"`
	Name    string        `toml:"name"`
	Cards   []card.Card   `toml:"card,omitempty"`
	Inserts []card.Insert `toml:"insert,omitempty"`
}

// Manifest is the compiled, ordered record set. Once written it is treated as
// an immutable artifact; the sheet path reads it and never mutates it in
// place.
type Manifest struct {
	Groups      []Group      `toml:"group"`
	Remaps      []Remap      `toml:"remap,omitempty"`
	LocalImages []LocalImage `toml:"local_image,omitempty"`
}

// sortRecords puts every slice of the manifest into its canonical order:
// groups lexically, cards by id (numeric-aware), printings by (id, face),
// inserts by name, remaps by from, local images by (group, id, face).
func (m *Manifest) sortRecords() {
	sort.Slice(m.Groups, func(i, j int) bool { return m.Groups[i].Group < m.Groups[j].Group })
	for gi := range m.Groups {
		g := &m.Groups[gi]
		sort.Slice(g.Cards, func(i, j int) bool {
			return card.CompareIDs(g.Cards[i].ID, g.Cards[j].ID) < 0
		})
		for ci := range g.Cards {
			pp := g.Cards[ci].Printings
			sort.Slice(pp, func(i, j int) bool {
				if pp[i].ID != pp[j].ID {
					return pp[i].ID < pp[j].ID
				}
				return pp[i].Face < pp[j].Face
			})
		}
		sort.Slice(g.Inserts, func(i, j int) bool { return g.Inserts[i].Name < g.Inserts[j].Name })
	}
	sort.Slice(m.Remaps, func(i, j int) bool { return m.Remaps[i].From < m.Remaps[j].From })
	sort.Slice(m.LocalImages, func(i, j int) bool {
		a, b := m.LocalImages[i], m.LocalImages[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Face < b.Face
	})
}

// GroupByName returns the named group, or nil.
func (m *Manifest) GroupByName(group string) *Group {
	for i := range m.Groups {
		if m.Groups[i].Group == group {
			return &m.Groups[i]
		}
	}
	return nil
}

// FindPrinting locates the card carrying the given printing id within a
// group. It returns the card and the matching printing records.
func (g *Group) FindPrinting(id int) (*card.Card, []card.Printing) {
	for i := range g.Cards {
		c := &g.Cards[i]
		var matched []card.Printing
		for _, p := range c.Printings {
			if p.ID == id {
				matched = append(matched, p)
			}
		}
		if len(matched) > 0 {
			return c, matched
		}
	}
	return nil, nil
}

// FindByTitle locates a card by exact title or stripped title, case
// insensitively.
func (g *Group) FindByTitle(title string) *card.Card {
	for i := range g.Cards {
		c := &g.Cards[i]
		if strings.EqualFold(c.Title, title) || strings.EqualFold(c.StrippedTitle, title) {
			return c
		}
	}
	return nil
}

// FindInsert locates an insert by name or title, case insensitively.
func (g *Group) FindInsert(name string) *card.Insert {
	for i := range g.Inserts {
		ins := &g.Inserts[i]
		if strings.EqualFold(ins.Name, name) || strings.EqualFold(ins.Title, name) ||
			strings.EqualFold(ins.StrippedTitle, name) {
			return ins
		}
	}
	return nil
}

// InsertsInGroup returns every insert tagged with the given insert group.
func (g *Group) InsertsInGroup(name string) []card.Insert {
	var out []card.Insert
	for _, ins := range g.Inserts {
		for _, tag := range ins.Groups {
			if strings.EqualFold(tag, name) {
				out = append(out, ins)
				break
			}
		}
	}
	return out
}

// RemapTarget redirects a legacy printing id through the remap table.
// Resolution is a single hop; the compiler guarantees no chains exist.
func (m *Manifest) RemapTarget(id int) int {
	for _, r := range m.Remaps {
		if r.From == id {
			return r.To
		}
	}
	return id
}

// LocalImageURL returns the overridden image URL for a printing, or "".
func (m *Manifest) LocalImageURL(group string, id, face int) string {
	for _, l := range m.LocalImages {
		if l.Group == group && l.ID == id && l.Face == face {
			return l.URL
		}
	}
	return ""
}

// MergeOverlay folds a local overlay manifest into m additively. Overlay
// cards extend existing groups; overlay remaps and local images append. The
// primary artifact on disk is never touched, only the in-memory view.
func (m *Manifest) MergeOverlay(o *Manifest) {
	for _, og := range o.Groups {
		g := m.GroupByName(og.Group)
		if g == nil {
			m.Groups = append(m.Groups, og)
			continue
		}
		for _, oc := range og.Cards {
			existing := findCard(g, oc.ID)
			if existing == nil {
				g.Cards = append(g.Cards, oc)
				continue
			}
			for _, p := range oc.Printings {
				if !hasPrintingKey(existing, p.Key()) {
					existing.Printings = append(existing.Printings, p)
				}
			}
		}
		for _, oi := range og.Inserts {
			if g.FindInsert(oi.Name) == nil {
				g.Inserts = append(g.Inserts, oi)
			}
		}
	}
	m.Remaps = append(m.Remaps, o.Remaps...)
	m.LocalImages = append(m.LocalImages, o.LocalImages...)
	m.sortRecords()
}

func findCard(g *Group, id string) *card.Card {
	for i := range g.Cards {
		if g.Cards[i].ID == id {
			return &g.Cards[i]
		}
	}
	return nil
}

func hasPrintingKey(c *card.Card, k card.Key) bool {
	for _, p := range c.Printings {
		if p.Key() == k {
			return true
		}
	}
	return false
}
