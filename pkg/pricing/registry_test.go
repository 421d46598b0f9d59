package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry() *Registry {
	return &Registry{
		Version:  "1.0.0",
		Currency: "USD",
		Models: []Model{
			{ID: "gpt-4o", Provider: "openai", PromptCostPerToken: 0.0000025, CompletionCostPerToken: 0.00001, Aliases: []string{"gpt4o"}},
			{ID: "meta-llama/llama-3.1-8b-instruct:free", Provider: "meta", FreeTier: true},
		},
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pricing.json")

	require.NoError(t, SaveRegistry(sampleRegistry(), path))
	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Models, 2)
	assert.Equal(t, 0.00001, reg.Models[0].CompletionCostPerToken)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadRegistry(bad)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	reg := sampleRegistry()

	m, ok := reg.Find("GPT-4o")
	assert.True(t, ok)
	assert.Equal(t, "openai", m.Provider)

	m, ok = reg.Find("gpt4o")
	assert.True(t, ok)
	assert.Equal(t, "gpt-4o", m.ID)

	_, ok = reg.Find("unknown")
	assert.False(t, ok)
}

func TestUpsert(t *testing.T) {
	reg := sampleRegistry()

	reg.Upsert(Model{ID: "gpt-4o", PromptCostPerToken: 0.000002})
	require.Len(t, reg.Models, 2)
	assert.Equal(t, 0.000002, reg.Models[0].PromptCostPerToken)

	reg.Upsert(Model{ID: "claude-3-haiku"})
	assert.Len(t, reg.Models, 3)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Registry)
		wantErr string
	}{
		{"valid", func(*Registry) {}, ""},
		{"empty", func(r *Registry) { r.Models = nil }, "no models"},
		{"missing id", func(r *Registry) { r.Models[0].ID = "" }, "required field: id"},
		{"duplicate", func(r *Registry) { r.Models[1].ID = "GPT-4O" }, "duplicate model id"},
		{"negative price", func(r *Registry) { r.Models[0].PromptCostPerToken = -1 }, "negative token price"},
		{"priced free tier", func(r *Registry) { r.Models[1].PromptCostPerToken = 0.1 }, "must have zero prices"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
