// Package dataset reads the external card dataset: one JSON file per set
// under v2/printings, one JSON file per card under v2/cards.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// PrintingRecord is one raw printing entry from a set file. Faces carries the
// dataset's variant declarations: a printing listing n extra faces expands to
// n+1 printable variants.
type PrintingRecord struct {
	ID     string            `json:"id"`
	CardID string            `json:"card_id"`
	Faces  []json.RawMessage `json:"faces"`
}

// NumericID parses the printing identifier, which the dataset stores as a
// decimal string.
func (p PrintingRecord) NumericID() (int, error) {
	id, err := strconv.Atoi(p.ID)
	if err != nil {
		return 0, fmt.Errorf("printing id %q is not numeric: %w", p.ID, err)
	}
	return id, nil
}

// FaceRecord is one alternate face of a flip card.
type FaceRecord struct {
	Title         string `json:"title"`
	StrippedTitle string `json:"stripped_title"`
}

// CardRecord is one raw card entry.
type CardRecord struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	StrippedTitle string       `json:"stripped_title"`
	Faces         []FaceRecord `json:"faces"`
}

// Source reads records from a dataset directory. Card records are cached so
// that printings from multiple sets referencing the same card load it once.
type Source struct {
	dir   string
	cards map[string]*CardRecord
}

// Open validates that the dataset directory exists and returns a Source over
// it.
func Open(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %s is not a directory", dir)
	}
	return &Source{dir: dir, cards: make(map[string]*CardRecord)}, nil
}

// SetPrintings loads the printing records for one set, preserving dataset
// order. Every record must carry an id and a card_id.
func (s *Source) SetPrintings(set string) ([]PrintingRecord, error) {
	path := filepath.Join(s.dir, "v2", "printings", set+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", set, err)
	}

	var printings []PrintingRecord
	if err := json.Unmarshal(data, &printings); err != nil {
		return nil, fmt.Errorf("set %s: %w", set, err)
	}

	for i, p := range printings {
		if p.ID == "" {
			return nil, fmt.Errorf("set %s: printing %d is missing `id`", set, i)
		}
		if p.CardID == "" {
			return nil, fmt.Errorf("set %s: printing %s is missing `card_id`", set, p.ID)
		}
		if _, err := p.NumericID(); err != nil {
			return nil, fmt.Errorf("set %s: %w", set, err)
		}
	}
	return printings, nil
}

// Card loads one card record by id.
func (s *Source) Card(id string) (*CardRecord, error) {
	if c, ok := s.cards[id]; ok {
		return c, nil
	}

	path := filepath.Join(s.dir, "v2", "cards", id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", id, err)
	}

	var c CardRecord
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("card %s: %w", id, err)
	}
	if c.ID == "" {
		c.ID = id
	}
	if c.Title == "" {
		return nil, fmt.Errorf("card %s is missing `title`", id)
	}
	for i, face := range c.Faces {
		if face.Title == "" {
			return nil, fmt.Errorf("card %s: face %d is missing `title`", id, i)
		}
	}

	s.cards[id] = &c
	return &c, nil
}
