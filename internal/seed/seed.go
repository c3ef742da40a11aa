// Package seed holds the species the catalogue starts with.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/sakif/mushroom-tracker/internal/model"
)

//go:embed species.json
var speciesJSON []byte

// Species decodes the embedded dataset. Every call returns a fresh slice
// with empty specimen lists, so callers may mutate the result.
func Species() ([]model.Species, error) {
	var out []model.Species
	if err := json.Unmarshal(speciesJSON, &out); err != nil {
		return nil, fmt.Errorf("seed: decoding species.json: %w", err)
	}
	for i := range out {
		out[i].SyncNames()
		out[i].Specimens = []model.Specimen{}
	}
	return out, nil
}
