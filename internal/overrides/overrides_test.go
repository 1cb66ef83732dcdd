package overrides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiaccess-studios/proxyprint/internal/card"
)

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile(t *testing.T) {
	path := writeTOML(t, `
[[collection]]
name = "English"
group = "english"

[[collection.printing]]
spec = "core"
name = "Core Set"

[[collection.insert]]
id = "click-tracker"
title = "Click Tracker"
insert_groups = ["tokens"]

[[card]]
id = "33001"
title = "Custom Card"
printing_id = 99001

[[nrdb_remap]]
from = 20001
to = 30001

[[local_image]]
id = 99001
url = "https://example.com/99001.webp"
`)
	f, err := ParseFile(path)
	require.NoError(t, err)

	require.Len(t, f.Collections, 1)
	assert.Equal(t, "english", f.Collections[0].Group)
	require.Len(t, f.Collections[0].Printings, 1)
	assert.Equal(t, "core", f.Collections[0].Printings[0].Spec)
	require.Len(t, f.Collections[0].Inserts, 1)
	assert.Equal(t, []string{"tokens"}, f.Collections[0].Inserts[0].Groups)

	require.Len(t, f.Cards, 1)
	assert.Equal(t, 99001, f.Cards[0].PrintingID)

	require.Len(t, f.Remaps, 1)
	assert.Equal(t, 20001, f.Remaps[0].From)
	assert.False(t, f.Remaps[0].Supersede)

	require.Len(t, f.LocalImages, 1)
}

func TestParseFileRejectsUnknownKeys(t *testing.T) {
	path := writeTOML(t, `
[[collection]]
name = "English"
group = "english"
colour = "blue"
`)
	_, err := ParseFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestParseFileValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"faces and variants exclusive",
			"[[collection]]\nname = \"E\"\ngroup = \"english\"\n" +
				"[[card]]\nid = \"1\"\nprinting_id = 5\nfaces = [\"Back\"]\nvariants = 2\n",
			"cannot declare both",
		},
		{
			"variants of one",
			"[[collection]]\nname = \"E\"\ngroup = \"english\"\n" +
				"[[card]]\nid = \"1\"\nprinting_id = 5\nvariants = 1\n",
			"variants",
		},
		{
			"printing_id and printings exclusive",
			"[[collection]]\nname = \"E\"\ngroup = \"english\"\n" +
				"[[card]]\nid = \"1\"\nprinting_id = 5\n[[card.printings]]\nid = 6\n",
			"cannot declare both",
		},
		{
			"local image url and path exclusive",
			"[[collection]]\nname = \"E\"\ngroup = \"english\"\n" +
				"[[local_image]]\nid = 5\nurl = \"https://x\"\npath = \"/y\"\n",
			"cannot declare both",
		},
		{
			"local image needs a source",
			"[[collection]]\nname = \"E\"\ngroup = \"english\"\n" +
				"[[local_image]]\nid = 5\n",
			"local_image_root",
		},
		{
			"collection needs group",
			"[[collection]]\nname = \"E\"\n",
			"missing `group`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(writeTOML(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandFaces(t *testing.T) {
	entry := CardEntry{
		ID:         "34021",
		Title:      "Flip Card",
		PrintingID: 34021,
		Faces:      []string{"Back Side"},
	}
	got, err := entry.Expand()
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, card.Printing{ID: 34021, Name: "Custom", Face: 1}, got[0])
	assert.Equal(t, card.Printing{ID: 34021, Name: "Custom", Face: 2}, got[1])
}

func TestExpandVariants(t *testing.T) {
	entry := CardEntry{
		ID:           "33001",
		Title:        "Variant Card",
		PrintingID:   50000,
		PrintingName: "Promo",
		Variants:     3,
	}
	got, err := entry.Expand()
	require.NoError(t, err)

	require.Len(t, got, 3)
	ids := map[int]bool{}
	for i, p := range got {
		ids[p.ID] = true
		assert.Equal(t, i+1, p.Variant)
	}
	assert.Len(t, ids, 3, "each variant carries its own printing id")
	assert.Equal(t, 50000, got[0].ID)
	assert.Equal(t, 50002, got[2].ID)
	assert.Equal(t, "Promo (v1)", got[0].Name)
}

func TestExpandRequiresPrinting(t *testing.T) {
	entry := CardEntry{ID: "33001", Title: "No Printing"}
	_, err := entry.Expand()
	require.Error(t, err)
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "file:///home/me/img.webp", FileURL("/home/me/img.webp"))
	assert.Equal(t, "file:///C:/images/img.webp", FileURL(`C:\images\img.webp`))
	assert.Equal(t, "file:///already/there", FileURL("file:///already/there"))
}

func TestResolveURL(t *testing.T) {
	root := &LocalImageRoot{URL: "https://example.com/assets/"}

	entry := LocalImageEntry{ID: 34021}
	assert.Equal(t, "https://example.com/assets/34021.webp", entry.ResolveURL(root, 0, "webp"))
	assert.Equal(t, "https://example.com/assets/34021.2.webp", entry.ResolveURL(root, 2, "webp"))

	entry = LocalImageEntry{ID: 34021, URL: "https://other.net/x.webp"}
	assert.Equal(t, "https://other.net/x.webp", entry.ResolveURL(root, 2, "webp"))

	entry = LocalImageEntry{ID: 34021, Path: `C:\img\alt.webp`}
	assert.Equal(t, "file:///C:/img/alt.webp", entry.ResolveURL(root, 0, "webp"))

	pathRoot := &LocalImageRoot{Path: "/srv/assets"}
	entry = LocalImageEntry{ID: 7}
	assert.Equal(t, "file:///srv/assets/7.webp", entry.ResolveURL(pathRoot, 0, "webp"))
}
