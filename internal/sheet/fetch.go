package sheet

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Fetcher downloads and decodes card images with bounded parallelism.
type Fetcher struct {
	Client   *http.Client
	Parallel int
	Log      *zap.Logger
}

func NewFetcher(log *zap.Logger) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 60 * time.Second},
		Parallel: runtime.NumCPU(),
		Log:      log,
	}
}

// Fetch resolves every item's image. The result slice is indexed like items,
// so slot association does not depend on fetch completion order. A fetch or
// decode failure fills the slot's error instead of aborting; only context
// cancellation returns an error.
func (f *Fetcher) Fetch(ctx context.Context, items []Item) ([]image.Image, []error, error) {
	urls := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.URL] {
			seen[item.URL] = true
			urls = append(urls, item.URL)
		}
	}
	sort.Strings(urls)

	type result struct {
		img image.Image
		err error
	}
	results := make(map[string]*result, len(urls))
	for _, u := range urls {
		results[u] = &result{}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.Parallel)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			img, err := f.fetchOne(ctx, u)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				f.Log.Warn("image unavailable", zap.String("url", u), zap.Error(err))
				results[u].err = &AssetError{URL: u, Err: err}
				return nil
			}
			results[u].img = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	images := make([]image.Image, len(items))
	errs := make([]error, len(items))
	for i, item := range items {
		r := results[item.URL]
		images[i] = r.img
		errs[i] = r.err
	}
	return images, errs, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL string) (image.Image, error) {
	f.Log.Debug("fetching image", zap.String("url", rawURL))

	data, err := f.read(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

func (f *Fetcher) read(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if u.Scheme == "file" {
		return os.ReadFile(filepath.FromSlash(u.Path))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
