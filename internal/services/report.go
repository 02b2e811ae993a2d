package services

import (
	"context"
	"fmt"
	"strings"
)

const comparisonSystemPrompt = `You are an elite European football scouting analyst.
Compare the players strictly based on the provided data (stats + radar values).

Your analysis should:
- Identify technical strengths
- Identify weaknesses
- Compare each player directly to the others
- Highlight tactical suitability
- Mention role tendencies and expected usage
- Keep the summary concise (~300 words max)`

// briefStatKeys are the statistics quoted per player in the comparison
// prompt. Anything more drowns the model in noise.
var briefStatKeys = []string{
	"Performance Gls", "Performance Ast", "KP",
	"Expected xG", "Expected xA",
	"Int", "Tackles Tkl", "Aerial Duels Won",
}

// ComparisonReport builds the scouting prompt from sanitized player
// records and asks Gemini for a comparison write-up. When the
// collaborator is disabled or failing, a short explanatory string comes
// back instead of an error: AI enrichment is additive, never required.
func (g *GeminiClient) ComparisonReport(ctx context.Context, players []map[string]interface{}) string {
	prompt := buildComparisonPrompt(players)

	text, err := g.GenerateContent(ctx, prompt)
	if err != nil {
		if err == ErrNoAPIKey {
			return "AI comparison unavailable: no API key configured."
		}
		g.logger.WithError(err).Warn("Comparison report generation failed")
		return "AI comparison unavailable at the moment."
	}
	return text
}

func buildComparisonPrompt(players []map[string]interface{}) string {
	lines := []string{comparisonSystemPrompt, "", "PLAYER DATA:", ""}
	for _, p := range players {
		name := stringField(p, "Player", "Unknown")
		pos := stringField(p, "Pos", "")
		club := stringField(p, "Squad", "")

		var snippet []string
		for _, key := range briefStatKeys {
			if v, ok := lookupStat(p, key); ok {
				snippet = append(snippet, fmt.Sprintf("%s: %v", key, v))
			}
		}
		lines = append(lines, fmt.Sprintf("- %s | %s | %s | %s", name, pos, club, strings.Join(snippet, "; ")))
	}
	lines = append(lines, "", "Provide a direct comparison and a summary.")
	return strings.Join(lines, "\n")
}

func stringField(p map[string]interface{}, key, fallback string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// lookupStat tolerates snapshots that carry short column names by
// retrying without the stat-family prefix.
func lookupStat(p map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := p[key]; ok && v != nil {
		return v, true
	}
	simple := key
	for _, prefix := range []string{"Performance ", "Expected ", "Standard "} {
		simple = strings.TrimPrefix(simple, prefix)
	}
	if v, ok := p[simple]; ok && v != nil {
		return v, true
	}
	return nil, false
}
