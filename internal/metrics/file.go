package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/docaudit/pkg/types"
)

// definitionsFile is the on-disk layout shared by YAML and JSON files
type definitionsFile struct {
	Metrics []metricEntry `yaml:"metrics" json:"metrics"`
}

type metricEntry struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Weight      float64           `yaml:"weight" json:"weight"`
	Guidelines  map[string]string `yaml:"guidelines" json:"guidelines"`
}

// Load reads a definitions file. JSON is accepted as a YAML subset.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics definitions: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault reads path, falling back to the built-in metrics when
// path is empty or does not exist.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes definitions from YAML or JSON bytes
func Parse(data []byte) (*Catalog, error) {
	var f definitionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse metrics definitions: %w", err)
	}
	if len(f.Metrics) == 0 {
		return nil, fmt.Errorf("metrics definitions contain no metrics")
	}

	defs := make([]types.Metric, 0, len(f.Metrics))
	for _, e := range f.Metrics {
		m := types.Metric{
			Name:        strings.TrimSpace(e.Name),
			Description: e.Description,
			Weight:      e.Weight,
			Guidelines:  make(map[int]string, len(e.Guidelines)),
		}
		if m.Weight == 0 {
			m.Weight = 1.0
		}
		for key, text := range e.Guidelines {
			score, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil {
				return nil, fmt.Errorf("metric %q: invalid guideline score %q", m.Name, key)
			}
			m.Guidelines[score] = text
		}
		defs = append(defs, m)
	}
	return NewCatalog(defs)
}

// Save writes metrics to path, as JSON for a .json extension and YAML
// otherwise.
func Save(path string, defs []types.Metric) error {
	f := definitionsFile{Metrics: make([]metricEntry, 0, len(defs))}
	for _, m := range defs {
		e := metricEntry{
			Name:        m.Name,
			Description: m.Description,
			Weight:      m.Weight,
			Guidelines:  make(map[string]string, len(m.Guidelines)),
		}
		for s, text := range m.Guidelines {
			e.Guidelines[strconv.Itoa(s)] = text
		}
		f.Metrics = append(f.Metrics, e)
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(f, "", "  ")
	} else {
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return fmt.Errorf("failed to encode metrics definitions: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
