package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultOverlayPath is where the local overlay lands when no explicit
// output path is given, relative to the working directory.
const DefaultOverlayPath = "local-assets/manifest.local.toml"

// WriteFile serializes the manifest to path atomically: the TOML is encoded
// to a temp file in the destination directory and renamed into place, so a
// failed run never leaves a partial manifest behind.
func WriteFile(m *Manifest, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &SerializationError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return &SerializationError{Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(m); err != nil {
		tmp.Close()
		return &SerializationError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &SerializationError{Path: path, Err: err}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return &SerializationError{Path: path, Err: err}
	}
	return nil
}

// ReadFile loads a compiled manifest.
func ReadFile(path string) (*Manifest, error) {
	var m Manifest
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &LoadError{
			Path: path,
			Err:  fmt.Errorf("unknown key %q", undecoded[0].String()),
		}
	}
	for gi := range m.Groups {
		g := &m.Groups[gi]
		for ci := range g.Cards {
			g.Cards[ci].Group = g.Group
		}
		for ii := range g.Inserts {
			g.Inserts[ii].Group = g.Group
		}
	}
	return &m, nil
}

// ReadWithOverlay loads a compiled manifest and, when present, merges the
// local overlay into it. Both conventions are probed: the sibling
// <stem>.local.<ext> and the compiler's default output location
// (local-assets/manifest.local.toml) relative to the manifest.
func ReadWithOverlay(path string) (*Manifest, error) {
	m, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	local := DetectLocalManifest(path)
	if local == "" {
		candidate := filepath.Join(filepath.Dir(path), filepath.FromSlash(DefaultOverlayPath))
		if _, err := os.Stat(candidate); err == nil {
			local = candidate
		}
	}
	if local != "" {
		overlay, err := ReadFile(local)
		if err != nil {
			return nil, err
		}
		m.MergeOverlay(overlay)
	}
	return m, nil
}
