package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/multiaccess-studios/proxyprint/internal/card"
	"github.com/multiaccess-studios/proxyprint/internal/dataset"
	"github.com/multiaccess-studios/proxyprint/internal/overrides"
)

// assetExt is the extension used for root-relative local asset file names.
const assetExt = "webp"

// Options configures one compiler run.
type Options struct {
	// DatasetDir is the external dataset directory.
	DatasetDir string
	// ManifestPath is the override manifest TOML.
	ManifestPath string
	// LocalManifestPath names the local-only override file. Empty means
	// auto-detect the conventional sibling (<stem>.local.toml).
	LocalManifestPath string
	// Warn receives non-fatal diagnostics (e.g. supersede notices).
	Warn func(format string, args ...any)
}

// Result holds the compiled primary manifest and, when a local override file
// was present, the separate overlay manifest.
type Result struct {
	Primary *Manifest
	Overlay *Manifest
}

// DetectLocalManifest returns the conventional local override path next to
// the manifest if it exists, or "".
func DetectLocalManifest(manifestPath string) string {
	ext := filepath.Ext(manifestPath)
	local := strings.TrimSuffix(manifestPath, ext) + ".local" + ext
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return ""
}

// Compile runs the full pipeline: load the dataset collections, apply manual
// overrides, expand shorthand, resolve remaps, and build the separate local
// overlay. Any LoadError or MergeConflictError aborts with no output.
func Compile(opts Options) (*Result, error) {
	warn := opts.Warn
	if warn == nil {
		warn = func(string, ...any) {}
	}

	file, err := overrides.ParseFile(opts.ManifestPath)
	if err != nil {
		return nil, &LoadError{Path: opts.ManifestPath, Err: err}
	}
	if len(file.Collections) == 0 {
		return nil, &LoadError{Path: opts.ManifestPath, Err: fmt.Errorf("no collections declared")}
	}

	localPath := opts.LocalManifestPath
	if localPath == "" {
		localPath = DetectLocalManifest(opts.ManifestPath)
	}
	var localFile *overrides.File
	if localPath != "" {
		localFile, err = overrides.ParseFile(localPath)
		if err != nil {
			return nil, &LoadError{Path: localPath, Err: err}
		}
	}

	src, err := dataset.Open(opts.DatasetDir)
	if err != nil {
		return nil, &LoadError{Path: opts.DatasetDir, Err: err}
	}

	b := newBuilder(nil)
	if err := b.loadCollections(src, file.Collections); err != nil {
		return nil, err
	}
	if err := b.applyCards(file.Cards, warn); err != nil {
		return nil, err
	}
	remaps, err := b.applyRemaps(file.Remaps, warn)
	if err != nil {
		return nil, err
	}
	locals, err := b.resolveLocalImages(file.LocalImages, file.LocalImageRoot)
	if err != nil {
		return nil, err
	}

	primary := b.manifest()
	primary.Remaps = remaps
	primary.LocalImages = locals
	primary.sortRecords()

	result := &Result{Primary: primary}

	if localFile != nil && !localFileEmpty(localFile) {
		ob := newBuilder(b)
		if err := ob.applyCards(localFile.Cards, warn); err != nil {
			return nil, err
		}
		overlayRemaps, err := ob.applyRemaps(localFile.Remaps, warn)
		if err != nil {
			return nil, err
		}
		overlayLocals, err := ob.resolveLocalImages(localFile.LocalImages, localFile.LocalImageRoot)
		if err != nil {
			return nil, err
		}

		overlay := ob.manifest()
		overlay.Remaps = overlayRemaps
		overlay.LocalImages = overlayLocals
		overlay.sortRecords()
		result.Overlay = overlay
	}

	return result, nil
}

func localFileEmpty(f *overrides.File) bool {
	return len(f.Cards) == 0 && len(f.Remaps) == 0 && len(f.LocalImages) == 0
}

// owner records which card a printing id belongs to.
type owner struct {
	group  string
	cardID string
}

// builder accumulates the merged record set. A builder with a base sees the
// base's records for validation and conflict checks but writes only its own;
// this is how the local overlay stays out of the primary set.
type builder struct {
	base *builder

	groups     map[string]*Group
	groupOrder []string
	owners     map[card.Key]owner
	idOwners   map[int]owner
}

func newBuilder(base *builder) *builder {
	return &builder{
		base:     base,
		groups:   make(map[string]*Group),
		owners:   make(map[card.Key]owner),
		idOwners: make(map[int]owner),
	}
}

func (b *builder) hasGroup(name string) bool {
	if _, ok := b.groups[name]; ok {
		return true
	}
	return b.base != nil && b.base.hasGroup(name)
}

func (b *builder) group(name, displayName string) *Group {
	g, ok := b.groups[name]
	if !ok {
		if displayName == "" {
			if base := b.baseGroup(name); base != nil {
				displayName = base.Name
			}
		}
		g = &Group{Group: name, Name: displayName}
		b.groups[name] = g
		b.groupOrder = append(b.groupOrder, name)
	}
	return g
}

func (b *builder) baseGroup(name string) *Group {
	if b.base == nil {
		return nil
	}
	if g, ok := b.base.groups[name]; ok {
		return g
	}
	return b.base.baseGroup(name)
}

func (b *builder) findCard(group, id string) *card.Card {
	if g, ok := b.groups[group]; ok {
		if c := findCard(g, id); c != nil {
			return c
		}
	}
	if b.base != nil {
		return b.base.findCard(group, id)
	}
	return nil
}

func (b *builder) keyOwner(k card.Key) (owner, bool) {
	if o, ok := b.owners[k]; ok {
		return o, true
	}
	if b.base != nil {
		return b.base.keyOwner(k)
	}
	return owner{}, false
}

func (b *builder) idOwner(id int) (owner, bool) {
	if o, ok := b.idOwners[id]; ok {
		return o, true
	}
	if b.base != nil {
		return b.base.idOwner(id)
	}
	return owner{}, false
}

// addPrinting attaches a printing to a card, enforcing global uniqueness. A
// printing already present on the same card is skipped; the same key or id on
// a different card is a fatal conflict.
func (b *builder) addPrinting(group string, c *card.Card, p card.Printing) error {
	k := p.Key()
	if o, ok := b.keyOwner(k); ok {
		if o.group == group && o.cardID == c.ID {
			return nil
		}
		return &MergeConflictError{
			ID: fmt.Sprintf("%d", p.ID),
			Reason: fmt.Sprintf("printing already belongs to card %s in group %s",
				o.cardID, o.group),
		}
	}
	if o, ok := b.idOwner(p.ID); ok && (o.group != group || o.cardID != c.ID) {
		return &MergeConflictError{
			ID: fmt.Sprintf("%d", p.ID),
			Reason: fmt.Sprintf("printing id already belongs to card %s in group %s",
				o.cardID, o.group),
		}
	}
	c.Printings = append(c.Printings, p)
	b.owners[k] = owner{group: group, cardID: c.ID}
	b.idOwners[p.ID] = owner{group: group, cardID: c.ID}
	return nil
}

// loadCollections reads every declared collection from the dataset into the
// build set, expanding dataset face and variant shorthand as it goes.
func (b *builder) loadCollections(src *dataset.Source, collections []overrides.Collection) error {
	for _, coll := range collections {
		g := b.group(coll.Group, coll.Name)
		g.Name = coll.Name

		for _, ins := range coll.Inserts {
			stripped := ins.StrippedTitle
			if stripped == "" {
				stripped = card.StripNonASCII(ins.Title)
			}
			g.Inserts = append(g.Inserts, card.Insert{
				Name:          ins.ID,
				Title:         ins.Title,
				StrippedTitle: stripped,
				Groups:        ins.Groups,
				Group:         coll.Group,
			})
		}

		for _, setRef := range coll.Printings {
			records, err := src.SetPrintings(setRef.Spec)
			if err != nil {
				return &LoadError{Path: setRef.Spec, Err: err}
			}
			for _, rec := range records {
				if err := b.addDatasetPrinting(src, g, rec, setRef.Name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (b *builder) addDatasetPrinting(src *dataset.Source, g *Group, rec dataset.PrintingRecord, printingName string) error {
	id, err := rec.NumericID()
	if err != nil {
		return &LoadError{Path: rec.CardID, Err: err}
	}

	c := b.findCard(g.Group, rec.CardID)
	if c == nil {
		cardRec, err := src.Card(rec.CardID)
		if err != nil {
			return &LoadError{Path: rec.CardID, Err: err}
		}
		faces := make([]card.Title, len(cardRec.Faces))
		for i, f := range cardRec.Faces {
			faces[i] = card.NewTitle(f.Title, f.StrippedTitle)
		}
		nc := card.Card{
			ID:            cardRec.ID,
			Title:         cardRec.Title,
			StrippedTitle: card.NewTitle(cardRec.Title, cardRec.StrippedTitle).StrippedTitle,
			Faces:         faces,
			Group:         g.Group,
		}
		if len(rec.Faces) > 0 && len(faces) == 0 {
			nc.Variants = len(rec.Faces) + 1
		}
		g.Cards = append(g.Cards, nc)
		c = &g.Cards[len(g.Cards)-1]
	}

	switch {
	case len(c.Faces) > 0:
		// Flip card: one face-indexed printing per side, shared id.
		for face := 1; face <= len(c.Faces)+1; face++ {
			p := card.Printing{ID: id, Name: printingName, Face: face}
			if err := b.addPrinting(g.Group, c, p); err != nil {
				return err
			}
		}
	case len(rec.Faces) > 0:
		// Variant printing: face indexes double as variant ordinals.
		for v := 1; v <= len(rec.Faces)+1; v++ {
			p := card.Printing{ID: id, Name: printingName, Face: v, Variant: v}
			if err := b.addPrinting(g.Group, c, p); err != nil {
				return err
			}
		}
		if c.Variants < len(rec.Faces)+1 {
			c.Variants = len(rec.Faces) + 1
		}
	default:
		p := card.Printing{ID: id, Name: printingName}
		if err := b.addPrinting(g.Group, c, p); err != nil {
			return err
		}
	}
	return nil
}

// applyCards merges the manual card entries. Entries apply in declaration
// order; later entries amend earlier ones per field.
func (b *builder) applyCards(entries []overrides.CardEntry, warn func(string, ...any)) error {
	for i := range entries {
		entry := &entries[i]
		group := entry.GroupOrDefault()
		if !b.hasGroup(group) {
			return &MergeConflictError{
				ID:     entry.ID,
				Reason: fmt.Sprintf("card group %q does not exist in the manifest", group),
			}
		}

		expanded, err := entry.Expand()
		if err != nil {
			return &LoadError{Path: entry.ID, Err: err}
		}

		g := b.group(group, "")
		c := findCard(g, entry.ID)
		if c == nil && b.findCard(group, entry.ID) != nil && b.base != nil {
			// Overlay edit of a primary card: materialize an overlay copy
			// that carries only the overlay's own printings.
			primaryCard := b.findCard(group, entry.ID)
			g.Cards = append(g.Cards, card.Card{
				ID:            primaryCard.ID,
				Title:         primaryCard.Title,
				StrippedTitle: primaryCard.StrippedTitle,
				Faces:         primaryCard.Faces,
				Variants:      primaryCard.Variants,
				Group:         group,
			})
			c = &g.Cards[len(g.Cards)-1]
		}
		if c == nil {
			title := entry.Title
			if title == "" {
				title = entry.ID
				warn("card %s has no title; using its id", entry.ID)
			}
			g.Cards = append(g.Cards, card.Card{
				ID:            entry.ID,
				Title:         title,
				StrippedTitle: card.NewTitle(title, entry.StrippedTitle).StrippedTitle,
				Faces:         entry.FaceTitles(),
				Variants:      entry.Variants,
				Group:         group,
			})
			c = &g.Cards[len(g.Cards)-1]
		} else {
			// Amend only the fields this entry specifies. Later entries win
			// per field, loudly.
			if entry.Title != "" && c.Title != entry.Title {
				warn("card %s: title %q overrides %q", c.ID, entry.Title, c.Title)
			}
			if entry.Title != "" {
				c.Title = entry.Title
				c.StrippedTitle = card.NewTitle(entry.Title, entry.StrippedTitle).StrippedTitle
			} else if entry.StrippedTitle != "" {
				c.StrippedTitle = entry.StrippedTitle
			}
			if len(entry.Faces) > 0 {
				c.Faces = entry.FaceTitles()
			}
			if entry.Variants > 0 {
				c.Variants = entry.Variants
			}
		}

		for _, p := range expanded {
			if err := b.addPrinting(group, c, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyRemaps rewrites superseded printing ids to their canonical ones.
// Chains are fatal; a distinct record already at the target id is fatal
// unless the entry declares supersede.
func (b *builder) applyRemaps(entries []overrides.RemapEntry, warn func(string, ...any)) ([]Remap, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	fromTo := make(map[int]int, len(entries))
	for _, r := range entries {
		if _, dup := fromTo[r.From]; dup {
			return nil, &MergeConflictError{
				ID:     fmt.Sprintf("%d", r.From),
				Reason: "duplicate remap source",
			}
		}
		fromTo[r.From] = r.To
	}
	for from, to := range fromTo {
		if _, chained := fromTo[to]; chained {
			return nil, &MergeConflictError{
				ID:     fmt.Sprintf("%d", from),
				Reason: fmt.Sprintf("remap chain: target %d is itself remapped", to),
			}
		}
	}

	ordered := make([]overrides.RemapEntry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].From < ordered[j].From })

	var out []Remap
	for _, r := range ordered {
		// Remaps rewrite records, so they resolve against this builder's own
		// set only. A local remap never reaches through to the primary.
		o, ok := b.idOwners[r.From]
		if !ok {
			if primary, inBase := b.idOwner(r.From); inBase {
				return nil, &MergeConflictError{
					ID: fmt.Sprintf("%d", r.From),
					Reason: fmt.Sprintf("local remap cannot rewrite printing on card %s in group %s of the primary manifest",
						primary.cardID, primary.group),
				}
			}
			return nil, &MergeConflictError{
				ID:     fmt.Sprintf("%d", r.From),
				Reason: fmt.Sprintf("unresolved remap: no printing carries %d", r.From),
			}
		}

		if existing, ok := b.idOwners[r.To]; ok {
			if !r.Supersede {
				return nil, &MergeConflictError{
					ID: fmt.Sprintf("%d", r.To),
					Reason: fmt.Sprintf("remap target already belongs to card %s in group %s (set supersede = true to replace it)",
						existing.cardID, existing.group),
				}
			}
			warn("remap %d -> %d supersedes printing on card %s (%s)",
				r.From, r.To, existing.cardID, existing.group)
			b.removePrintings(existing, r.To)
		} else if primary, inBase := b.idOwner(r.To); inBase {
			return nil, &MergeConflictError{
				ID: fmt.Sprintf("%d", r.To),
				Reason: fmt.Sprintf("local remap cannot supersede printing on card %s in group %s of the primary manifest",
					primary.cardID, primary.group),
			}
		}

		b.rewritePrinting(o, r.From, r.To)
		out = append(out, Remap{From: r.From, To: r.To})
	}
	return out, nil
}

// rewritePrinting changes every printing with the old id on the owning card.
func (b *builder) rewritePrinting(o owner, from, to int) {
	g := b.groups[o.group]
	if g == nil {
		return
	}
	c := findCard(g, o.cardID)
	if c == nil {
		return
	}
	for i := range c.Printings {
		if c.Printings[i].ID == from {
			old := c.Printings[i].Key()
			c.Printings[i].ID = to
			delete(b.owners, old)
			b.owners[c.Printings[i].Key()] = o
		}
	}
	delete(b.idOwners, from)
	b.idOwners[to] = o
}

// removePrintings drops every printing with the given id from its card; a
// card left with no printings is dropped with it.
func (b *builder) removePrintings(o owner, id int) {
	g := b.groups[o.group]
	if g == nil {
		return
	}
	c := findCard(g, o.cardID)
	if c == nil {
		return
	}
	kept := c.Printings[:0]
	for _, p := range c.Printings {
		if p.ID == id {
			delete(b.owners, p.Key())
			continue
		}
		kept = append(kept, p)
	}
	c.Printings = kept
	delete(b.idOwners, id)

	if len(c.Printings) == 0 {
		cards := g.Cards[:0]
		for i := range g.Cards {
			if g.Cards[i].ID != o.cardID {
				cards = append(cards, g.Cards[i])
			}
		}
		g.Cards = cards
	}
}

// resolveLocalImages validates local image entries against the build set and
// resolves each to a final URL.
func (b *builder) resolveLocalImages(entries []overrides.LocalImageEntry, root *overrides.LocalImageRoot) ([]LocalImage, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	var out []LocalImage
	for i := range entries {
		entry := &entries[i]
		group := entry.GroupOrDefault()
		if !b.hasGroup(group) {
			return nil, &LoadError{
				Path: fmt.Sprintf("local_image %d", entry.ID),
				Err:  fmt.Errorf("group %q does not exist in the manifest", group),
			}
		}

		o, ok := b.idOwner(entry.ID)
		if !ok || o.group != group {
			return nil, &LoadError{
				Path: fmt.Sprintf("local_image %d", entry.ID),
				Err:  fmt.Errorf("no printing %d in group %q", entry.ID, group),
			}
		}

		faces := b.printingFaces(o, entry.ID)
		face := entry.Face
		if face > 0 {
			if !containsInt(faces, face) {
				return nil, &LoadError{
					Path: fmt.Sprintf("local_image %d", entry.ID),
					Err:  fmt.Errorf("face %d does not exist in group %q", face, group),
				}
			}
		} else if len(faces) == 1 {
			face = faces[0]
		} else if len(faces) > 1 {
			return nil, &LoadError{
				Path: fmt.Sprintf("local_image %d", entry.ID),
				Err:  fmt.Errorf("printing has %d faces; specify `face`", len(faces)),
			}
		}

		out = append(out, LocalImage{
			ID:    entry.ID,
			Group: group,
			Face:  face,
			URL:   entry.ResolveURL(root, face, assetExt),
		})
	}
	return out, nil
}

func (b *builder) printingFaces(o owner, id int) []int {
	var c *card.Card
	if g, ok := b.groups[o.group]; ok {
		c = findCard(g, o.cardID)
	}
	if c == nil {
		c = b.findCard(o.group, o.cardID)
	}
	if c == nil {
		return nil
	}
	var faces []int
	for _, p := range c.Printings {
		if p.ID == id {
			faces = append(faces, p.Face)
		}
	}
	return faces
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// manifest flattens the build set into an ordered Manifest.
func (b *builder) manifest() *Manifest {
	m := &Manifest{}
	for _, name := range b.groupOrder {
		g := b.groups[name]
		for i := range g.Cards {
			g.Cards[i].Group = name
		}
		for i := range g.Inserts {
			g.Inserts[i].Group = name
		}
		m.Groups = append(m.Groups, *g)
	}
	return m
}
