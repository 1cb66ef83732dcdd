// Package assets maps printings and inserts to the image URLs a sheet run
// fetches from.
package assets

import (
	"fmt"

	"github.com/multiaccess-studios/proxyprint/internal/manifest"
)

// DefaultImageRoot is the public bucket holding rendered card printings.
const DefaultImageRoot = "https://nro-public.s3.nl-ams.scw.cloud/nro/card-printings/v2/webp"

// Resolver builds image URLs for manifest records. Local image overrides in
// the manifest take precedence over the remote root.
type Resolver struct {
	Root     string
	Manifest *manifest.Manifest
}

func NewResolver(m *manifest.Manifest, root string) *Resolver {
	if root == "" {
		root = DefaultImageRoot
	}
	return &Resolver{Root: root, Manifest: m}
}

// CardURL resolves the image for one printing face. Face 0 names the only
// face of a single-faced card.
func (r *Resolver) CardURL(group string, id, face int) string {
	if local := r.Manifest.LocalImageURL(group, id, face); local != "" {
		return local
	}
	if face > 0 {
		return fmt.Sprintf("%s/%s/card/%d.%d.webp", r.Root, group, id, face)
	}
	return fmt.Sprintf("%s/%s/card/%d.webp", r.Root, group, id)
}

// InsertURL resolves the image for a named insert.
func (r *Resolver) InsertURL(group, name string) string {
	return fmt.Sprintf("%s/%s/insert/%s.webp", r.Root, group, name)
}
