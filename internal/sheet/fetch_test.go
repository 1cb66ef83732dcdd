package sheet

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h)))
	return buf.Bytes()
}

func TestFetch(t *testing.T) {
	var hits int32
	data := pngBytes(t, 20, 28)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/missing.webp" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	items := []Item{
		{Title: "A", URL: srv.URL + "/a.webp"},
		{Title: "A again", URL: srv.URL + "/a.webp"},
		{Title: "B", URL: srv.URL + "/b.webp"},
		{Title: "Missing", URL: srv.URL + "/missing.webp"},
	}

	f := NewFetcher(zap.NewNop())
	images, errs, err := f.Fetch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, images, 4)
	require.Len(t, errs, 4)

	assert.NotNil(t, images[0])
	assert.NotNil(t, images[1])
	assert.NotNil(t, images[2])
	assert.Nil(t, images[3])

	assert.NoError(t, errs[0])
	var assetErr *AssetError
	require.ErrorAs(t, errs[3], &assetErr)
	assert.Equal(t, srv.URL+"/missing.webp", assetErr.URL)

	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "duplicate URLs are fetched once")
}

func TestFetchFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 10, 14), 0o644))

	f := NewFetcher(zap.NewNop())
	items := []Item{{Title: "Local", URL: "file://" + path}}

	images, errs, err := f.Fetch(context.Background(), items)
	require.NoError(t, err)
	require.NoError(t, errs[0])
	require.NotNil(t, images[0])
	assert.Equal(t, 10, images[0].Bounds().Dx())
}

func TestFetchDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not an image"))
	}))
	defer srv.Close()

	f := NewFetcher(zap.NewNop())
	images, errs, err := f.Fetch(context.Background(), []Item{{URL: srv.URL + "/x.webp"}})
	require.NoError(t, err)
	assert.Nil(t, images[0])

	var assetErr *AssetError
	require.ErrorAs(t, errs[0], &assetErr)
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(t, 4, 4))
	}))
	defer srv.Close()

	f := NewFetcher(zap.NewNop())
	_, _, err := f.Fetch(ctx, []Item{{URL: srv.URL + "/a.webp"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
