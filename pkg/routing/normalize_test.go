package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInstruction_CanonicalCodes(t *testing.T) {
	tests := []struct {
		code string
		raw  string
		want string
	}{
		{"turn-left", "", "Turn left"},
		{"turn-right", "", "Turn right"},
		{"sharp-left", "", "Make a sharp left"},
		{"slight-right", "", "Keep slightly right"},
		{"merge", "", "Merge onto the road"},
		{"ramp", "", "Take the ramp"},
		{"fork", "", "Keep to the fork"},
		{"roundabout-enter", "", "Enter the roundabout"},
		{"roundabout-exit", "", "Exit the roundabout"},
		{"u-turn", "", "Make a U-turn"},
		{"depart", "", "Head out"},
		{"arrive", "", "You have arrived at your destination"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeInstruction(tt.code, tt.raw), "code %s", tt.code)
	}
}

func TestNormalizeInstruction_KeepsRoadSuffix(t *testing.T) {
	got := NormalizeInstruction("turn-left", "turn left onto MG Road")
	assert.Equal(t, "Turn left onto MG Road", got)
}

func TestNormalizeInstruction_LexicalCleanup(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"left onto Ring Road", "Turn left onto Ring Road"},
		{"right", "Turn right"},
		{"head NORTH on Janpath", "Head north on Janpath"},
		{"continue onto NH48", "Continue onto NH48"},
		{"", "Continue straight"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeInstruction("unknown-code", tt.raw), "raw %q", tt.raw)
	}
}
