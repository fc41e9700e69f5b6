package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/rdsim/internal/grayscott"
)

// presetSlugs maps short names to preset IDs.
var presetSlugs = map[string]int{
	"spots":   1,
	"mitosis": 1,
	"maze":    2,
	"coral":   2,
	"stripes": 3,
	"waves":   4,
	"spirals": 5,
}

// ResolvePreset accepts a preset ID ("3") or a slug ("stripes").
func ResolvePreset(s string) (grayscott.Preset, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	id, err := strconv.Atoi(key)
	if err != nil {
		var ok bool
		if id, ok = presetSlugs[key]; !ok {
			return grayscott.Preset{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, s)
		}
	}
	p, ok := grayscott.LookupPreset(id)
	if !ok {
		return grayscott.Preset{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, s)
	}
	return p, nil
}

// PresetSlug returns the primary short name for a preset ID.
func PresetSlug(id int) string {
	switch id {
	case 1:
		return "spots"
	case 2:
		return "maze"
	case 3:
		return "stripes"
	case 4:
		return "waves"
	case 5:
		return "spirals"
	}
	return ""
}

func ListPresets() []grayscott.Preset {
	return grayscott.Presets()
}
