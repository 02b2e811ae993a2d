package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName strips diacritics and lower-cases a display name so that
// searches match regardless of accents ("Rúben Días" -> "ruben dias").
func NormalizeName(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

// MapPositionGroup derives the coarse position group from a raw position
// string. Only the first comma-separated token decides; unrecognized
// tokens fall back to substring checks and finally to midfielder.
func MapPositionGroup(raw string) PositionGroup {
	token := strings.ToUpper(strings.TrimSpace(strings.SplitN(raw, ",", 2)[0]))
	switch token {
	case "GK":
		return GroupGoalkeeper
	case "FW", "ST", "CF":
		return GroupAttacker
	case "MF", "CM", "CAM", "AM", "DM", "CDM", "RM", "LM":
		return GroupMidfielder
	case "DF", "CB", "LB", "RB", "LWB", "RWB":
		return GroupDefender
	}
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "FW"):
		return GroupAttacker
	case strings.Contains(upper, "MF"):
		return GroupMidfielder
	case strings.Contains(upper, "DF"):
		return GroupDefender
	}
	return GroupMidfielder
}
