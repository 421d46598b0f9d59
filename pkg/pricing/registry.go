// pkg/pricing/registry.go
package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse pricing registry %s: %w", path, err)
	}
	return &reg, nil
}

func SaveRegistry(reg *Registry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find looks a model up by id or alias, case-insensitively.
func (r *Registry) Find(id string) (Model, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, m := range r.Models {
		if strings.ToLower(m.ID) == id {
			return m, true
		}
		for _, a := range m.Aliases {
			if strings.ToLower(a) == id {
				return m, true
			}
		}
	}
	return Model{}, false
}

// Upsert replaces the model with the same id or appends it.
func (r *Registry) Upsert(m Model) {
	for i := range r.Models {
		if strings.EqualFold(r.Models[i].ID, m.ID) {
			r.Models[i] = m
			return
		}
	}
	r.Models = append(r.Models, m)
}

func (r *Registry) Validate() error {
	if len(r.Models) == 0 {
		return fmt.Errorf("registry contains no models")
	}
	ids := make(map[string]bool)
	for _, m := range r.Models {
		if m.ID == "" {
			return fmt.Errorf("model missing required field: id")
		}
		key := strings.ToLower(m.ID)
		if ids[key] {
			return fmt.Errorf("duplicate model id: %s", m.ID)
		}
		ids[key] = true

		if m.PromptCostPerToken < 0 || m.CompletionCostPerToken < 0 {
			return fmt.Errorf("model %s has a negative token price", m.ID)
		}
		if m.FreeTier && (m.PromptCostPerToken != 0 || m.CompletionCostPerToken != 0) {
			return fmt.Errorf("free-tier model %s must have zero prices", m.ID)
		}
	}
	return nil
}
