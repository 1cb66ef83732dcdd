package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiaccess-studios/proxyprint/internal/assets"
	"github.com/multiaccess-studios/proxyprint/internal/card"
	"github.com/multiaccess-studios/proxyprint/internal/manifest"
)

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Groups: []manifest.Group{{
			Group: "english",
			Name:  "English",
			Cards: []card.Card{
				{
					ID:            "sure-gamble",
					Title:         "Sure Gamble",
					StrippedTitle: "Sure Gamble",
					Printings:     []card.Printing{{ID: 20010, Name: "Core Set"}},
				},
				{
					ID:            "hoshiko",
					Title:         "Hoshiko Shiro: Untold Protagonist",
					StrippedTitle: "Hoshiko Shiro: Untold Protagonist",
					Faces:         []card.Title{{Title: "Hoshiko Shiro: Mahou Shoujo"}},
					Printings: []card.Printing{
						{ID: 20011, Name: "Core Set", Face: 1},
						{ID: 20011, Name: "Core Set", Face: 2},
					},
				},
				{
					ID:            "doppelganger",
					Title:         "Doppelgänger",
					StrippedTitle: "Doppelganger",
					Variants:      3,
					Printings: []card.Printing{
						{ID: 20012, Name: "Core Set", Face: 1, Variant: 1},
						{ID: 20012, Name: "Core Set", Face: 2, Variant: 2},
						{ID: 20012, Name: "Core Set", Face: 3, Variant: 3},
					},
				},
			},
			Inserts: []card.Insert{
				{Name: "click-tracker", Title: "Click Tracker", StrippedTitle: "Click Tracker",
					Groups: []string{"tokens"}},
				{Name: "credit-token", Title: "Credit Token", StrippedTitle: "Credit Token",
					Groups: []string{"tokens"}},
			},
		}},
	}
}

func TestParseDecklist(t *testing.T) {
	input := `
# my deck
3 Sure Gamble

1 Hoshiko Shiro: Untold Protagonist
`
	reqs, err := ParseDecklist(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, Request{Count: 3, Name: "Sure Gamble"}, reqs[0])
	assert.Equal(t, Request{Count: 1, Name: "Hoshiko Shiro: Untold Protagonist"}, reqs[1])
}

func TestParseDecklistErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no count", "Sure Gamble\n"},
		{"zero count", "0 Sure Gamble\n"},
		{"negative count", "-1 Sure Gamble\n"},
		{"count only", "3 \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDecklist(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestSelectPlainCard(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 3, Name: "sure gamble"}})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, 20010, item.ID)
		assert.Equal(t, "https://img.example.com/english/card/20010.webp", item.URL)
	}
}

func TestSelectFlipCard(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 2, Name: "Hoshiko Shiro: Untold Protagonist"}})
	require.NoError(t, err)
	require.Len(t, items, 4, "each copy of a flip card prints both faces")

	assert.Equal(t, 1, items[0].Face)
	assert.Equal(t, 2, items[1].Face)
	assert.Equal(t, "Hoshiko Shiro: Untold Protagonist", items[0].Title)
	assert.Equal(t, "Hoshiko Shiro: Mahou Shoujo", items[1].Title)
	assert.Equal(t, "https://img.example.com/english/card/20011.2.webp", items[1].URL)
}

func TestSelectVariantsRoundRobin(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 5, Name: "Doppelganger"}})
	require.NoError(t, err)
	require.Len(t, items, 5)

	faces := make([]int, len(items))
	for i, item := range items {
		faces[i] = item.Face
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2}, faces)
}

func TestSelectInsert(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 2, Name: "Click Tracker"}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].ID)
	assert.Equal(t, "https://img.example.com/english/insert/click-tracker.webp", items[0].URL)
}

func TestSelectInsertGroup(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 2, Name: "tokens"}})
	require.NoError(t, err)
	require.Len(t, items, 4, "count repeats the whole insert group")
	assert.Equal(t, "Click Tracker", items[0].Title)
	assert.Equal(t, "Credit Token", items[1].Title)
	assert.Equal(t, "Click Tracker", items[2].Title)
}

func TestSelectPrintingByID(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 2, Name: "#20010"}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Sure Gamble", items[0].Title)
	assert.Equal(t, 20010, items[0].ID)
}

func TestSelectPrintingByIDFlip(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 1, Name: "#20011"}})
	require.NoError(t, err)
	require.Len(t, items, 2, "an id reference to a flip card prints both faces")
	assert.Equal(t, "Hoshiko Shiro: Mahou Shoujo", items[1].Title)
}

func TestSelectPrintingByIDRemapped(t *testing.T) {
	m := testManifest()
	m.Remaps = []manifest.Remap{{From: 11111, To: 20010}}
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 1, Name: "#11111"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 20010, items[0].ID, "superseded id redirects through the remap table")
}

func TestSelectPrintingByIDUnknown(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "")

	_, err := Select(m, res, []Request{{Count: 1, Name: "#99999"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "99999")
}

func TestSelectUnknownName(t *testing.T) {
	m := testManifest()
	res := assets.NewResolver(m, "")

	_, err := Select(m, res, []Request{{Count: 1, Name: "Not A Card"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not A Card")
}

func TestSelectUsesLocalImage(t *testing.T) {
	m := testManifest()
	m.LocalImages = []manifest.LocalImage{
		{ID: 20010, Group: "english", URL: "file:///srv/20010.webp"},
	}
	res := assets.NewResolver(m, "https://img.example.com")

	items, err := Select(m, res, []Request{{Count: 1, Name: "Sure Gamble"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "file:///srv/20010.webp", items[0].URL)
}
