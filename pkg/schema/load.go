package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/actionchain/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a definition or dataset file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a chain definition.
func Parse(data []byte, format Format) (*ChainConfig, error) {
	var cfg ChainConfig
	if err := decode(data, format, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse chain definition: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads and decodes a chain definition file (YAML or JSON).
func LoadFile(path string) (*ChainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain definition: %w", err)
	}
	return Parse(data, FormatOf(path))
}

// ParseDataset decodes an input dataset.
func ParseDataset(data []byte, format Format) (*domain.Dataset, error) {
	var ds domain.Dataset
	if err := decode(data, format, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if ds.Rows == nil {
		ds.Rows = []domain.Row{}
	}
	return &ds, nil
}

// LoadDataset reads and decodes a dataset file (YAML or JSON).
func LoadDataset(path string) (*domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return ParseDataset(data, FormatOf(path))
}

// Marshal encodes a chain definition.
func Marshal(cfg *ChainConfig, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(cfg, "", "  ")
	}
	return yaml.Marshal(cfg)
}

func decode(data []byte, format Format, out any) error {
	if format == FormatJSON {
		return json.Unmarshal(data, out)
	}
	return yaml.Unmarshal(data, out)
}
