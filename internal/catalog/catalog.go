// Package catalog parses the image metadata JSON that backs the
// illustration index.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lessonlab/tutor/internal/domain"
)

type rawImage struct {
	ID          string   `json:"id"`
	Filename    string   `json:"filename"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

var knownKeys = map[string]struct{}{
	"id": {}, "filename": {}, "title": {}, "description": {}, "keywords": {},
}

// Load reads and validates an image catalog file. Any invalid entry
// aborts the whole load so the index never holds a partial catalog.
func Load(path string) ([]domain.ImageRecord, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates raw catalog JSON and converts it to image records.
func Parse(data []byte) ([]domain.ImageRecord, error) {
	var raws []rawImage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", domain.ErrCatalogInvalid, err)
	}

	// Second pass keeps fields the schema doesn't name so downstream
	// consumers still see them.
	var loose []map[string]any
	if err := json.Unmarshal(data, &loose); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", domain.ErrCatalogInvalid, err)
	}

	seen := make(map[string]int, len(raws))
	records := make([]domain.ImageRecord, 0, len(raws))
	for i, raw := range raws {
		if raw.ID == "" {
			return nil, fmt.Errorf("%w: entry %d: id is required", domain.ErrCatalogInvalid, i)
		}
		if raw.Filename == "" {
			return nil, fmt.Errorf("%w: entry %s: filename is required", domain.ErrCatalogInvalid, raw.ID)
		}
		if raw.Description == "" {
			return nil, fmt.Errorf("%w: entry %s: description is required", domain.ErrCatalogInvalid, raw.ID)
		}
		if prev, dup := seen[raw.ID]; dup {
			return nil, fmt.Errorf("%w: entry %d: duplicate id %q (first at %d)",
				domain.ErrCatalogInvalid, i, raw.ID, prev)
		}
		seen[raw.ID] = i

		records = append(records, domain.ImageRecord{
			ID:          raw.ID,
			Filename:    raw.Filename,
			Title:       raw.Title,
			Description: raw.Description,
			Keywords:    strings.Join(raw.Keywords, ", "),
			Extra:       extraFields(loose[i]),
		})
	}
	return records, nil
}

func extraFields(entry map[string]any) map[string]string {
	var extra map[string]string
	for k, v := range entry {
		if _, known := knownKeys[k]; known {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = fmt.Sprintf("%v", v)
	}
	return extra
}
