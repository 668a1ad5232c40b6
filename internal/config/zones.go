package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/parking-meter/internal/domain"
)

// zonesFile is the on-disk shape of ZONES_FILE:
//
//	zones:
//	  - id: 6f1c...
//	    name: Old Town
//	    hourly_rate: 250
type zonesFile struct {
	Zones []domain.Zone `yaml:"zones"`
}

// LoadZones reads and validates a YAML zone file.
func LoadZones(path string) ([]domain.Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadZones: read file: %w", err)
	}
	zones, err := ParseZones(data)
	if err != nil {
		return nil, fmt.Errorf("config.LoadZones: %s: %w", path, err)
	}
	return zones, nil
}

// ParseZones decodes a YAML zone document. Unknown fields and duplicate ids
// are rejected; the rate-table rules themselves are checked when the zones
// are seeded.
func ParseZones(data []byte) ([]domain.Zone, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f zonesFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(f.Zones))
	for _, z := range f.Zones {
		if seen[z.ID] {
			return nil, fmt.Errorf("zone %s: duplicate id", z.ID)
		}
		seen[z.ID] = true
	}
	return f.Zones, nil
}
