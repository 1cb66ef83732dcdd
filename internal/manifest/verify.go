package manifest

import (
	"fmt"

	"github.com/multiaccess-studios/proxyprint/internal/card"
)

type VerifyResults struct {
	Errors   []string
	Warnings []string
}

// Verifier rechecks the referential invariants of a compiled manifest. A
// manifest produced by Compile always passes; the command exists to vet
// hand-edited or stale files before a print run.
type Verifier struct {
	Manifest *Manifest
	Results  VerifyResults
}

func NewVerifier(m *Manifest) *Verifier {
	return &Verifier{Manifest: m}
}

func (v *Verifier) Verify() VerifyResults {
	v.verifyGroups()
	v.verifyPrintings()
	v.verifyRemaps()
	v.verifyLocalImages()
	return v.Results
}

func (v *Verifier) errorf(format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Verifier) warnf(format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

func (v *Verifier) verifyGroups() {
	seen := make(map[string]bool)
	for _, g := range v.Manifest.Groups {
		if g.Group == "" {
			v.errorf("group with display name %q has no group key", g.Name)
			continue
		}
		if seen[g.Group] {
			v.errorf("duplicate group %q", g.Group)
		}
		seen[g.Group] = true
		if g.Name == "" {
			v.warnf("group %q has no display name", g.Group)
		}
		if len(g.Cards) == 0 && len(g.Inserts) == 0 {
			v.warnf("group %q is empty", g.Group)
		}

		cardIDs := make(map[string]bool)
		for _, c := range g.Cards {
			if cardIDs[c.ID] {
				v.errorf("duplicate card %s in group %q", c.ID, g.Group)
			}
			cardIDs[c.ID] = true
			if c.Title == "" {
				v.errorf("card %s in group %q has no title", c.ID, g.Group)
			}
			if len(c.Printings) == 0 {
				v.errorf("card %s in group %q has no printings", c.ID, g.Group)
			}
			for i, f := range c.Faces {
				if f.Title == "" {
					v.errorf("card %s face %d has no title", c.ID, i+1)
				}
			}
		}

		insertNames := make(map[string]bool)
		for _, ins := range g.Inserts {
			if ins.Name == "" {
				v.errorf("insert in group %q has no name", g.Group)
				continue
			}
			if insertNames[ins.Name] {
				v.errorf("duplicate insert %q in group %q", ins.Name, g.Group)
			}
			insertNames[ins.Name] = true
		}
	}
}

// verifyPrintings enforces global printing uniqueness across all groups.
func (v *Verifier) verifyPrintings() {
	type ref struct {
		group  string
		cardID string
	}
	keys := make(map[card.Key]ref)
	ids := make(map[int]ref)
	for _, g := range v.Manifest.Groups {
		for _, c := range g.Cards {
			for _, p := range c.Printings {
				k := p.Key()
				if prev, ok := keys[k]; ok {
					v.errorf("printing %d face %d on card %s (%s) duplicates card %s (%s)",
						p.ID, p.Face, c.ID, g.Group, prev.cardID, prev.group)
					continue
				}
				keys[k] = ref{group: g.Group, cardID: c.ID}
				if prev, ok := ids[p.ID]; ok && (prev.group != g.Group || prev.cardID != c.ID) {
					v.errorf("printing id %d on card %s (%s) duplicates card %s (%s)",
						p.ID, c.ID, g.Group, prev.cardID, prev.group)
					continue
				}
				ids[p.ID] = ref{group: g.Group, cardID: c.ID}
			}
		}
	}
}

// verifyRemaps checks that every remap source id is gone from the record set
// and every target id is present.
func (v *Verifier) verifyRemaps() {
	fromTo := make(map[int]int, len(v.Manifest.Remaps))
	for _, r := range v.Manifest.Remaps {
		if _, dup := fromTo[r.From]; dup {
			v.errorf("duplicate remap source %d", r.From)
		}
		fromTo[r.From] = r.To
	}
	for from, to := range fromTo {
		if _, chained := fromTo[to]; chained {
			v.errorf("remap chain: %d -> %d, but %d is itself remapped", from, to, to)
		}
	}
	for _, r := range v.Manifest.Remaps {
		if v.printingExists(r.From) {
			v.errorf("remap source %d still has a printing in the manifest", r.From)
		}
		if !v.printingExists(r.To) {
			v.errorf("remap target %d has no printing in the manifest", r.To)
		}
	}
}

func (v *Verifier) verifyLocalImages() {
	for _, li := range v.Manifest.LocalImages {
		g := v.Manifest.GroupByName(li.Group)
		if g == nil {
			v.errorf("local image %d references unknown group %q", li.ID, li.Group)
			continue
		}
		c, printings := g.FindPrinting(li.ID)
		if c == nil {
			v.errorf("local image %d has no printing in group %q", li.ID, li.Group)
			continue
		}
		if li.URL == "" {
			v.errorf("local image %d (group %q) has no url", li.ID, li.Group)
		}
		if li.Face > 0 {
			found := false
			for _, p := range printings {
				if p.Face == li.Face {
					found = true
					break
				}
			}
			if !found {
				v.errorf("local image %d face %d does not exist on card %s", li.ID, li.Face, c.ID)
			}
		} else if len(printings) > 1 {
			v.errorf("local image %d matches %d faces but names none", li.ID, len(printings))
		}
	}
}

func (v *Verifier) printingExists(id int) bool {
	for _, g := range v.Manifest.Groups {
		for _, c := range g.Cards {
			if c.HasPrinting(id) {
				return true
			}
		}
	}
	return false
}
