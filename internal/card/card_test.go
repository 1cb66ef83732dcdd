package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripNonASCII(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "Sure Gamble", "Sure Gamble"},
		{"accented", "Chaos Theory: Wünderkind", "Chaos Theory: Wnderkind"},
		{"mixed scripts", "Ryū 龍", "Ry "},
		{"all non-ascii keeps original", "龍", "龍"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripNonASCII(tt.in))
		})
	}
}

func TestNewTitle(t *testing.T) {
	got := NewTitle("Déjà Vu", "")
	assert.Equal(t, "Déjà Vu", got.Title)
	assert.Equal(t, "Dj Vu", got.StrippedTitle)

	got = NewTitle("Déjà Vu", "Deja Vu")
	assert.Equal(t, "Deja Vu", got.StrippedTitle)
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"42", "42", 0},
		{"9", "alt-9", -1},
		{"alt-10", "alt-9", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareIDs(tt.a, tt.b), "CompareIDs(%q, %q)", tt.a, tt.b)
	}
}

func TestFaceTitle(t *testing.T) {
	c := Card{
		Title: "Hoshiko Shiro: Untold Protagonist",
		Faces: []Title{{Title: "Hoshiko Shiro: Mahou Shoujo"}},
	}
	assert.Equal(t, "Hoshiko Shiro: Untold Protagonist", c.FaceTitle(1))
	assert.Equal(t, "Hoshiko Shiro: Mahou Shoujo", c.FaceTitle(2))
	assert.Equal(t, "Hoshiko Shiro: Untold Protagonist", c.FaceTitle(0))
	assert.Equal(t, 2, c.FaceCount())
}

func TestPrintingKey(t *testing.T) {
	a := Printing{ID: 34021, Face: 1}
	b := Printing{ID: 34021, Face: 2}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, Key{ID: 34021, Face: 1}, a.Key())
}
