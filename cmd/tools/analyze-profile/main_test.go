package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfile(t *testing.T) {
	o := cliOptions{profilePath: "-", skills: "Excel, ,SQL"}
	o.profile.Location = "Austin, TX"

	p, err := resolveProfile(o, strings.NewReader(`{"occupation":"accountant","location":"Denver, CO","skills":["tax"]}`))
	require.NoError(t, err)
	assert.Equal(t, "accountant", p.Occupation)
	assert.Equal(t, "Austin, TX", p.Location)
	assert.Equal(t, []string{"Excel", "SQL"}, p.Skills)
}

func TestResolveProfile_Errors(t *testing.T) {
	_, err := resolveProfile(cliOptions{}, strings.NewReader(""))
	assert.ErrorContains(t, err, "occupation is required")

	_, err = resolveProfile(cliOptions{profilePath: "-"}, strings.NewReader("{"))
	assert.ErrorContains(t, err, "parse profile")
}
