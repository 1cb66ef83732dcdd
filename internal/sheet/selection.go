package sheet

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/multiaccess-studios/proxyprint/internal/assets"
	"github.com/multiaccess-studios/proxyprint/internal/card"
	"github.com/multiaccess-studios/proxyprint/internal/manifest"
)

// Item is one filled slot: a single card face or insert to print, with the
// URL its image comes from.
type Item struct {
	Title string
	Group string
	ID    int
	Face  int
	URL   string
}

// Request is one decklist line.
type Request struct {
	Count int
	Name  string
}

// ParseDecklist reads the `<count> <name>` line format. Blank lines and
// lines starting with # are skipped.
func ParseDecklist(r io.Reader) ([]Request, error) {
	var reqs []Request
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		countStr, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("line %d: expected `<count> <name>`, got %q", lineno, line)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil || count < 1 {
			return nil, fmt.Errorf("line %d: bad count %q", lineno, countStr)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("line %d: missing name", lineno)
		}
		reqs = append(reqs, Request{Count: count, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Select resolves decklist requests against the manifest into print items in
// a deterministic order. Names match card titles (exact or stripped, case
// insensitive), insert names, and insert group names; a `#<id>` name selects
// one specific printing, redirected through the remap table. A flip card
// expands to all of its faces per copy; a card with variant printings cycles
// through the variants across copies.
func Select(m *manifest.Manifest, res *assets.Resolver, reqs []Request) ([]Item, error) {
	var items []Item
	for _, req := range reqs {
		expanded, err := selectOne(m, res, req)
		if err != nil {
			return nil, err
		}
		items = append(items, expanded...)
	}
	return items, nil
}

func selectOne(m *manifest.Manifest, res *assets.Resolver, req Request) ([]Item, error) {
	if idStr, ok := strings.CutPrefix(req.Name, "#"); ok {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, fmt.Errorf("bad printing id %q", req.Name)
		}
		return printingItems(m, res, id, req.Count)
	}
	for gi := range m.Groups {
		g := &m.Groups[gi]
		if c := g.FindByTitle(req.Name); c != nil {
			return cardItems(res, g.Group, c, req.Count), nil
		}
		if ins := g.FindInsert(req.Name); ins != nil {
			item := Item{
				Title: ins.Title,
				Group: g.Group,
				URL:   res.InsertURL(g.Group, ins.Name),
			}
			return repeatItem(item, req.Count), nil
		}
		if groupInserts := g.InsertsInGroup(req.Name); len(groupInserts) > 0 {
			var items []Item
			for n := 0; n < req.Count; n++ {
				for _, ins := range groupInserts {
					items = append(items, Item{
						Title: ins.Title,
						Group: g.Group,
						URL:   res.InsertURL(g.Group, ins.Name),
					})
				}
			}
			return items, nil
		}
	}
	return nil, fmt.Errorf("no card or insert named %q in the manifest", req.Name)
}

// printingItems resolves a `#<id>` decklist reference. The id passes through
// the remap table first, so superseded ids from old decklists still resolve.
func printingItems(m *manifest.Manifest, res *assets.Resolver, id, count int) ([]Item, error) {
	id = m.RemapTarget(id)
	for gi := range m.Groups {
		g := &m.Groups[gi]
		c, matched := g.FindPrinting(id)
		if c == nil {
			continue
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].Face < matched[j].Face })
		var items []Item
		for n := 0; n < count; n++ {
			if matched[0].Variant > 0 {
				// Variant printings share an id; cycle them across copies.
				p := matched[n%len(matched)]
				items = append(items, Item{
					Title: c.Title,
					Group: g.Group,
					ID:    p.ID,
					Face:  p.Face,
					URL:   res.CardURL(g.Group, p.ID, p.Face),
				})
				continue
			}
			for _, p := range matched {
				title := c.Title
				if len(c.Faces) > 0 {
					title = c.FaceTitle(p.Face)
				}
				items = append(items, Item{
					Title: title,
					Group: g.Group,
					ID:    p.ID,
					Face:  p.Face,
					URL:   res.CardURL(g.Group, p.ID, p.Face),
				})
			}
		}
		return items, nil
	}
	return nil, fmt.Errorf("no printing with id %d in the manifest", id)
}

func cardItems(res *assets.Resolver, group string, c *card.Card, count int) []Item {
	if len(c.Printings) == 0 {
		return nil
	}
	printings := make([]card.Printing, len(c.Printings))
	copy(printings, c.Printings)
	sort.Slice(printings, func(i, j int) bool {
		if printings[i].ID != printings[j].ID {
			return printings[i].ID < printings[j].ID
		}
		return printings[i].Face < printings[j].Face
	})

	var variants []card.Printing
	for _, p := range printings {
		if p.Variant > 0 {
			variants = append(variants, p)
		}
	}

	var items []Item
	switch {
	case len(c.Faces) > 0:
		// Every copy of a flip card prints all faces of one printing.
		id := printings[0].ID
		for n := 0; n < count; n++ {
			for _, p := range printings {
				if p.ID != id {
					continue
				}
				items = append(items, Item{
					Title: c.FaceTitle(p.Face),
					Group: group,
					ID:    p.ID,
					Face:  p.Face,
					URL:   res.CardURL(group, p.ID, p.Face),
				})
			}
		}
	case len(variants) > 0:
		for n := 0; n < count; n++ {
			p := variants[n%len(variants)]
			items = append(items, Item{
				Title: c.Title,
				Group: group,
				ID:    p.ID,
				Face:  p.Face,
				URL:   res.CardURL(group, p.ID, p.Face),
			})
		}
	default:
		p := printings[0]
		item := Item{
			Title: c.Title,
			Group: group,
			ID:    p.ID,
			Face:  p.Face,
			URL:   res.CardURL(group, p.ID, p.Face),
		}
		items = repeatItem(item, count)
	}
	return items
}

func repeatItem(item Item, count int) []Item {
	items := make([]Item, count)
	for i := range items {
		items[i] = item
	}
	return items
}
