package grayscott

// Preset is a named (f, k) pair known to produce a particular pattern.
type Preset struct {
	ID    int
	F, K  float64
	Label string
}

var presetTable = [...]Preset{
	{ID: 1, F: 0.055, K: 0.062, Label: "Mitosis (spots)"},
	{ID: 2, F: 0.039, K: 0.058, Label: "Coral/Maze"},
	{ID: 3, F: 0.026, K: 0.052, Label: "Stripes"},
	{ID: 4, F: 0.078, K: 0.061, Label: "Waves"},
	{ID: 5, F: 0.014, K: 0.047, Label: "Spirals"},
}

// Presets returns the preset table ordered by ID.
func Presets() []Preset {
	out := make([]Preset, len(presetTable))
	copy(out, presetTable[:])
	return out
}

// LookupPreset returns the preset with the given ID.
func LookupPreset(id int) (Preset, bool) {
	for _, p := range presetTable {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
