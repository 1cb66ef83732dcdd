// Package overrides parses the hand-authored manifest TOML into strongly
// typed records and expands the faces/variants shorthand into flat printing
// records. All field validation happens here, at the parse boundary, so the
// merge pass only ever sees well-formed entries.
package overrides

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/multiaccess-studios/proxyprint/internal/card"
)

// DefaultGroup is assumed when an entry does not name a group.
const DefaultGroup = "english"

// File is the full override manifest: the collections to load from the
// dataset plus the manual additions and edits applied on top of them.
type File struct {
	Collections    []Collection      `toml:"collection"`
	Cards          []CardEntry       `toml:"card"`
	Remaps         []RemapEntry      `toml:"nrdb_remap"`
	LocalImages    []LocalImageEntry `toml:"local_image"`
	LocalImageRoot *LocalImageRoot   `toml:"local_image_root"`
}

// Collection declares one group of the manifest and the dataset sets that
// populate it.
type Collection struct {
	Name      string               `toml:"name"`
	Group     string               `toml:"group"`
	Printings []CollectionPrinting `toml:"printing"`
	Inserts   []InsertEntry        `toml:"insert"`
}

// CollectionPrinting names a dataset set file and the printing name its cards
// carry.
type CollectionPrinting struct {
	Spec string `toml:"spec"`
	Name string `toml:"name"`
}

// InsertEntry declares a non-card sheet filler.
type InsertEntry struct {
	ID            string   `toml:"id"`
	Title         string   `toml:"title"`
	StrippedTitle string   `toml:"stripped_title"`
	Groups        []string `toml:"insert_groups"`
}

// CardEntry is one manual card addition or edit.
type CardEntry struct {
	ID            string          `toml:"id"`
	Title         string          `toml:"title"`
	StrippedTitle string          `toml:"stripped_title"`
	Group         string          `toml:"group"`
	PrintingName  string          `toml:"printing_name"`
	PrintingID    int             `toml:"printing_id"`
	Printings     []PrintingEntry `toml:"printings"`
	Faces         []string        `toml:"faces"`
	Variants      int             `toml:"variants"`
}

// PrintingEntry is one declared printing of a manual card.
type PrintingEntry struct {
	ID   int    `toml:"id"`
	Name string `toml:"name"`
}

// RemapEntry redirects a superseded printing identifier to its canonical one.
// Supersede must be set explicitly for the remap to replace an existing
// distinct record at the target id.
type RemapEntry struct {
	From      int  `toml:"from"`
	To        int  `toml:"to"`
	Supersede bool `toml:"supersede"`
}

// LocalImageEntry overrides the image source for one printing.
type LocalImageEntry struct {
	ID    int    `toml:"id"`
	Face  int    `toml:"face"`
	Group string `toml:"group"`
	URL   string `toml:"url"`
	Path  string `toml:"path"`
}

// LocalImageRoot is a shared location applied to local image entries that
// give only an id.
type LocalImageRoot struct {
	URL  string `toml:"url"`
	Path string `toml:"path"`
}

// ParseFile decodes an override manifest, rejecting unknown keys and
// malformed entries immediately.
func ParseFile(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parsing %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	for i := range f.Collections {
		if err := f.Collections[i].validate(); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	for i := range f.Cards {
		if err := f.Cards[i].validate(); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	for i, r := range f.Remaps {
		if r.From == 0 || r.To == 0 {
			return nil, fmt.Errorf("parsing %s: nrdb_remap %d needs both `from` and `to`", path, i)
		}
	}
	for i := range f.LocalImages {
		if err := f.LocalImages[i].validate(f.LocalImageRoot); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return &f, nil
}

func (c *Collection) validate() error {
	if c.Group == "" {
		return fmt.Errorf("collection %q is missing `group`", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("collection for group %q is missing `name`", c.Group)
	}
	for _, ins := range c.Inserts {
		if ins.ID == "" || ins.Title == "" {
			return fmt.Errorf("insert in group %q needs both `id` and `title`", c.Group)
		}
	}
	return nil
}

func (c *CardEntry) validate() error {
	if c.ID == "" {
		return fmt.Errorf("card entry is missing `id`")
	}
	if len(c.Faces) > 0 && c.Variants > 0 {
		return fmt.Errorf("card %s cannot declare both `faces` and `variants`", c.ID)
	}
	if c.Variants == 1 {
		return fmt.Errorf("card %s has `variants` = 1; omit it for single-face cards", c.ID)
	}
	if c.Variants < 0 {
		return fmt.Errorf("card %s has negative `variants`", c.ID)
	}
	if c.PrintingID != 0 && len(c.Printings) > 0 {
		return fmt.Errorf("card %s cannot declare both `printing_id` and `printings`", c.ID)
	}
	for _, p := range c.Printings {
		if p.ID == 0 {
			return fmt.Errorf("card %s has a printing without an `id`", c.ID)
		}
	}
	return nil
}

func (l *LocalImageEntry) validate(root *LocalImageRoot) error {
	if l.ID == 0 {
		return fmt.Errorf("local_image entry is missing `id`")
	}
	if l.URL != "" && l.Path != "" {
		return fmt.Errorf("local_image %d cannot declare both `url` and `path`", l.ID)
	}
	if l.URL == "" && l.Path == "" {
		if root == nil || (root.URL == "" && root.Path == "") {
			return fmt.Errorf("local_image %d is missing `url` or `path` and no local_image_root is set", l.ID)
		}
	}
	if l.Face < 0 {
		return fmt.Errorf("local_image %d has negative `face`", l.ID)
	}
	return nil
}

// GroupOrDefault returns the entry's group, falling back to DefaultGroup.
func (c *CardEntry) GroupOrDefault() string {
	if c.Group == "" {
		return DefaultGroup
	}
	return c.Group
}

// GroupOrDefault returns the entry's group, falling back to DefaultGroup.
func (l *LocalImageEntry) GroupOrDefault() string {
	if l.Group == "" {
		return DefaultGroup
	}
	return l.Group
}

// DeclaredPrintings returns the entry's printing list, folding the singular
// printing_id form into it. An entry with neither is an error: manual cards
// always name at least one printing.
func (c *CardEntry) DeclaredPrintings() ([]PrintingEntry, error) {
	if len(c.Printings) > 0 {
		return c.Printings, nil
	}
	if c.PrintingID != 0 {
		return []PrintingEntry{{ID: c.PrintingID, Name: c.PrintingName}}, nil
	}
	return nil, fmt.Errorf("card %s is missing `printing_id` or `printings`", c.ID)
}

// Expand turns the entry's declared printings and its faces/variants
// shorthand into flat printing records. This runs before any uniqueness
// check, so conflict detection always sees the fully expanded set.
//
// Face shorthand keeps one printing id per declared printing and assigns face
// indexes 1..n+1. Variant shorthand assigns each variant its own id,
// sequential from the declared one, with a suffixed name.
func (c *CardEntry) Expand() ([]card.Printing, error) {
	declared, err := c.DeclaredPrintings()
	if err != nil {
		return nil, err
	}

	var out []card.Printing
	for _, d := range declared {
		name := d.Name
		if name == "" {
			name = c.PrintingName
		}
		if name == "" {
			name = "Custom"
		}

		switch {
		case len(c.Faces) > 0:
			for face := 1; face <= len(c.Faces)+1; face++ {
				out = append(out, card.Printing{ID: d.ID, Name: name, Face: face})
			}
		case c.Variants > 0:
			for v := 1; v <= c.Variants; v++ {
				out = append(out, card.Printing{
					ID:      d.ID + v - 1,
					Name:    fmt.Sprintf("%s (v%d)", name, v),
					Variant: v,
				})
			}
		default:
			out = append(out, card.Printing{ID: d.ID, Name: name})
		}
	}
	return out, nil
}

// FaceTitles builds the Title records for the entry's declared faces.
func (c *CardEntry) FaceTitles() []card.Title {
	if len(c.Faces) == 0 {
		return nil
	}
	faces := make([]card.Title, len(c.Faces))
	for i, f := range c.Faces {
		faces[i] = card.NewTitle(f, "")
	}
	return faces
}

// FileURL converts a filesystem path into a file URL, normalizing Windows
// separators. Paths already carrying a scheme pass through unchanged.
func FileURL(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	if strings.HasPrefix(p, "file://") {
		return p
	}
	return "file:///" + strings.TrimPrefix(p, "/")
}

// ResolveURL resolves a local image entry to its final URL, consulting the
// shared root for entries that give only an id. ext is the asset extension
// used for root-relative file names.
func (l *LocalImageEntry) ResolveURL(root *LocalImageRoot, face int, ext string) string {
	fileName := fmt.Sprintf("%d.%s", l.ID, ext)
	if face > 0 {
		fileName = fmt.Sprintf("%d.%d.%s", l.ID, face, ext)
	}

	switch {
	case l.URL != "":
		return l.URL
	case l.Path != "":
		return FileURL(l.Path)
	case root != nil && root.URL != "":
		return strings.TrimSuffix(root.URL, "/") + "/" + fileName
	case root != nil && root.Path != "":
		base := strings.TrimSuffix(strings.ReplaceAll(root.Path, `\`, "/"), "/")
		return FileURL(base + "/" + fileName)
	}
	return ""
}
