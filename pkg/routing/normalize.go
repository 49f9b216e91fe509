package routing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// canonicalPhrases maps maneuver codes to their display phrases.
var canonicalPhrases = map[string]string{
	"depart":           "Head out",
	"arrive":           "You have arrived at your destination",
	"turn-left":        "Turn left",
	"turn-right":       "Turn right",
	"sharp-left":       "Make a sharp left",
	"sharp-right":      "Make a sharp right",
	"slight-left":      "Keep slightly left",
	"slight-right":     "Keep slightly right",
	"straight":         "Continue straight",
	"merge":            "Merge onto the road",
	"ramp":             "Take the ramp",
	"fork":             "Keep to the fork",
	"roundabout-enter": "Enter the roundabout",
	"roundabout-exit":  "Exit the roundabout",
	"u-turn":           "Make a U-turn",
}

// directionalWords are lowercased during lexical cleanup.
var directionalWords = map[string]bool{
	"left": true, "right": true, "straight": true,
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
}

var titleCaser = cases.Title(language.English)

// NormalizeInstruction renders a display instruction. A recognized maneuver
// code wins and maps to its canonical phrase (keeping any "onto <road>"
// suffix from the raw text); otherwise the provider's free text gets lexical
// cleanup: directional words are lowercased, a bare leading "left"/"right"
// gains a "Turn", and the sentence is capitalized.
func NormalizeInstruction(code, raw string) string {
	if phrase, ok := canonicalPhrases[code]; ok {
		if idx := strings.Index(strings.ToLower(raw), " onto "); idx >= 0 {
			return phrase + raw[idx:]
		}
		return phrase
	}
	return cleanupInstruction(raw)
}

func cleanupInstruction(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return canonicalPhrases["straight"]
	}

	for i, w := range words {
		if directionalWords[strings.ToLower(w)] {
			words[i] = strings.ToLower(w)
		}
	}

	if words[0] == "left" || words[0] == "right" {
		words = append([]string{"Turn"}, words...)
	}

	words[0] = titleCaser.String(words[0])
	return strings.Join(words, " ")
}
