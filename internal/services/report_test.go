package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildComparisonPrompt(t *testing.T) {
	players := []map[string]interface{}{
		{
			"Player":          "Aaron One",
			"Pos":             "FW",
			"Squad":           "Arsenal",
			"Performance Gls": 18.0,
			"Expected xG":     14.2,
		},
		{
			"Player": "Bruno Two",
			"Pos":    "MF",
			"Squad":  "Barcelona",
			// short column names, resolved through the prefix fallback
			"Gls": 6.0,
			"Ast": 11.0,
		},
	}

	prompt := buildComparisonPrompt(players)
	assert.Contains(t, prompt, "scouting analyst")
	assert.Contains(t, prompt, "- Aaron One | FW | Arsenal |")
	assert.Contains(t, prompt, "Performance Gls: 18")
	assert.Contains(t, prompt, "Expected xG: 14.2")
	assert.Contains(t, prompt, "- Bruno Two | MF | Barcelona |")
	assert.Contains(t, prompt, "Performance Ast: 11")
}

func TestBuildComparisonPrompt_MissingFields(t *testing.T) {
	prompt := buildComparisonPrompt([]map[string]interface{}{
		{"Performance Gls": nil},
	})
	assert.Contains(t, prompt, "- Unknown |  |  |")
	assert.NotContains(t, prompt, "Performance Gls:")
}

func TestLookupStat(t *testing.T) {
	p := map[string]interface{}{
		"Performance Gls": 10.0,
		"xA":              3.5,
		"Int":             nil,
	}

	v, ok := lookupStat(p, "Performance Gls")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	v, ok = lookupStat(p, "Expected xA")
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)

	_, ok = lookupStat(p, "Int")
	assert.False(t, ok, "explicit nulls read as absent")

	_, ok = lookupStat(p, "KP")
	assert.False(t, ok)
}

func TestComparisonReport_DisabledCollaborator(t *testing.T) {
	_, _, gemini := newTestServices(t)

	report := gemini.ComparisonReport(context.Background(), []map[string]interface{}{
		{"Player": "Aaron One"},
	})
	assert.Equal(t, "AI comparison unavailable: no API key configured.", report)
}
