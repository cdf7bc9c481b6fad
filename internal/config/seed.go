package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ayurtrace/ayurtrace/internal/quality"
	"github.com/ayurtrace/ayurtrace/internal/zone"
)

// Seed is the dev bootstrap payload: zones, lab certifications and quality
// standard sets loaded into a fresh local state.
type Seed struct {
	Zones     []zone.CultivationZone       `json:"zones"`
	Labs      []quality.LabCertification   `json:"labs"`
	Standards []quality.QualityStandardSet `json:"standards"`
}

// LoadSeed reads a YAML seed file. The YAML is decoded generically and
// re-marshaled through JSON so the domain structs' json tags name the fields,
// keeping seed files and wire payloads spelled identically.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse seed yaml %s: %w", path, err)
	}
	bridge, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("convert seed %s: %w", path, err)
	}

	var seed Seed
	if err := json.Unmarshal(bridge, &seed); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return &seed, nil
}
