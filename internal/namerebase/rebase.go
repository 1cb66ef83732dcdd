// Package namerebase renumbers asset files named by printing id.
package namerebase

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Rename is one planned file move.
type Rename struct {
	From string
	To   string
}

// Plan scans dir for files named `<n>.<ext>` or `<n>.<face>.<ext>` and
// returns the renames that add offset to n. Files that do not match the
// pattern are left alone.
func Plan(dir, ext string, offset int) ([]Rename, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type move struct {
		id     int
		rename Rename
	}
	var moves []move
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		id, rebased, ok := rebaseName(name, ext, offset)
		if !ok {
			continue
		}
		moves = append(moves, move{
			id: id,
			rename: Rename{
				From: filepath.Join(dir, name),
				To:   filepath.Join(dir, rebased),
			},
		})
	}

	// Rename highest ids first for a positive offset (lowest first for a
	// negative one) so a move never clobbers a file still waiting to move.
	sort.Slice(moves, func(i, j int) bool {
		if offset >= 0 {
			return moves[i].id > moves[j].id
		}
		return moves[i].id < moves[j].id
	})

	renames := make([]Rename, len(moves))
	for i, m := range moves {
		renames[i] = m.rename
	}
	return renames, nil
}

// Rebase applies the plan for dir, returning how many files moved.
func Rebase(dir, ext string, offset int) (int, error) {
	renames, err := Plan(dir, ext, offset)
	if err != nil {
		return 0, err
	}
	for i, r := range renames {
		if _, err := os.Stat(r.To); err == nil {
			return i, fmt.Errorf("rename %s: %s already exists", r.From, r.To)
		}
		if err := os.Rename(r.From, r.To); err != nil {
			return i, err
		}
	}
	return len(renames), nil
}

func rebaseName(name, ext string, offset int) (id int, rebased string, ok bool) {
	suffix := "." + ext
	if !strings.HasSuffix(name, suffix) {
		return 0, "", false
	}
	stem := strings.TrimSuffix(name, suffix)

	id, face, ok := splitStem(stem)
	if !ok {
		return 0, "", false
	}
	newID := id + offset
	if newID < 0 {
		return 0, "", false
	}
	if face != "" {
		return id, fmt.Sprintf("%d.%s%s", newID, face, suffix), true
	}
	return id, fmt.Sprintf("%d%s", newID, suffix), true
}

// splitStem parses `<n>` or `<n>.<face>` where both parts are integers.
func splitStem(stem string) (id int, face string, ok bool) {
	idPart, facePart, hasFace := strings.Cut(stem, ".")
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, "", false
	}
	if hasFace {
		if _, err := strconv.Atoi(facePart); err != nil {
			return 0, "", false
		}
		return id, facePart, true
	}
	return id, "", true
}
