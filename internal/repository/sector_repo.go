package repository

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"options-dashboard/internal/model"

	"gopkg.in/yaml.v3"
)

// SectorRepository answers which sector tags a ticker carries. Sector
// membership is external metadata; nothing in the dashboard computes it.
type SectorRepository interface {
	Sectors(ticker model.Ticker) []string
}

type sectorFile struct {
	Sectors map[string][]string `yaml:"sectors"`
}

type sectorRepository struct {
	byTicker map[model.Ticker][]string
}

// NewSectorRepository loads tags from a YAML file. An empty path or a missing
// file yields an empty directory.
func NewSectorRepository(path string) (SectorRepository, error) {
	if path == "" {
		return NewStaticSectorRepository(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStaticSectorRepository(nil), nil
		}
		return nil, fmt.Errorf("read sectors file: %w", err)
	}

	var file sectorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sectors file: %w", err)
	}
	return NewStaticSectorRepository(file.Sectors), nil
}

// NewStaticSectorRepository builds the directory from an in-memory map.
// Symbols are normalized and tags lowercased; invalid symbols are skipped.
func NewStaticSectorRepository(sectors map[string][]string) SectorRepository {
	byTicker := make(map[model.Ticker][]string, len(sectors))
	for symbol, tags := range sectors {
		ticker, err := model.NormalizeTicker(symbol)
		if err != nil {
			continue
		}
		normalized := make([]string, 0, len(tags))
		for _, tag := range tags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				normalized = append(normalized, tag)
			}
		}
		sort.Strings(normalized)
		byTicker[ticker] = normalized
	}
	return &sectorRepository{byTicker: byTicker}
}

func (r *sectorRepository) Sectors(ticker model.Ticker) []string {
	tags := r.byTicker[ticker]
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
