package card

import (
	"strconv"
	"strings"
)

// Title holds the display form of a card name together with its ASCII-only
// search form.
type Title struct {
	Title         string `toml:"title"`
	StrippedTitle string `toml:"stripped_title"`
}

// NewTitle builds a Title, deriving the stripped form when it is not supplied.
func NewTitle(title, stripped string) Title {
	if stripped == "" {
		stripped = StripNonASCII(title)
	}
	return Title{Title: title, StrippedTitle: stripped}
}

// StripNonASCII removes all non-ASCII characters from s. If nothing survives,
// the original string is returned so the title never becomes empty.
func StripNonASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return s
	}
	return b.String()
}

// Printing is one printable rendition of a card. Face is 0 for single-face
// printings; for flip cards face 1 is the front and 2.. are the alternate
// faces. Variant is set when the printing came from a `variants` shorthand
// expansion, in which case each variant carries its own ID.
type Printing struct {
	ID      int    `toml:"id"`
	Name    string `toml:"name"`
	Face    int    `toml:"face,omitempty"`
	Variant int    `toml:"variant,omitempty"`
}

// Key identifies a printing record. Flip-card faces share a printing ID and
// differ by face index, so uniqueness is on the pair.
type Key struct {
	ID   int
	Face int
}

// Key returns the uniqueness key of the printing.
func (p Printing) Key() Key {
	return Key{ID: p.ID, Face: p.Face}
}

// Card is one card identity inside a group, together with all of its
// printings.
type Card struct {
	ID            string     `toml:"id"`
	Title         string     `toml:"title"`
	StrippedTitle string     `toml:"stripped_title"`
	Faces         []Title    `toml:"faces,omitempty"`
	Variants      int        `toml:"variants,omitempty"`
	Printings     []Printing `toml:"printings"`

	// Group is implied by the enclosing manifest section and is filled in
	// when a manifest is read back.
	Group string `toml:"-"`
}

// FaceCount reports how many printable faces the card has. Single-face cards
// and variant cards count one face per printing record.
func (c *Card) FaceCount() int {
	if len(c.Faces) > 0 {
		return len(c.Faces) + 1
	}
	return 1
}

// FaceTitle returns the display title for the given face index.
func (c *Card) FaceTitle(face int) string {
	if face >= 2 && face-2 < len(c.Faces) {
		return c.Faces[face-2].Title
	}
	return c.Title
}

// HasPrinting reports whether the card carries a printing with the given ID.
func (c *Card) HasPrinting(id int) bool {
	for _, p := range c.Printings {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Insert is a non-card sheet filler such as a token or reference card. It is
// identified by name within its group.
type Insert struct {
	Name          string   `toml:"name"`
	Title         string   `toml:"title"`
	StrippedTitle string   `toml:"stripped_title"`
	Groups        []string `toml:"insert_groups,omitempty"`

	Group string `toml:"-"`
}

// CompareIDs orders card IDs numerically when both parse as integers and
// lexically otherwise, so "9" sorts before "10" but mixed IDs stay stable.
func CompareIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
