package render

// Palette defines the color scheme for SVG rendering.
// All values are SVG color strings.
type Palette struct {
	Name       string // Scheme identifier, e.g. "classic"
	Table      string // Table surface fill
	TileFill   string // Tile body fill
	TileStroke string // Tile outline
	Divider    string // Center divider line
	Pip        string // Pip dots
	Endpoint   string // Open-end markers and pip value text
}

// Classic is the default scheme: bone tiles on green felt.
func Classic() Palette {
	return Palette{
		Name:       "classic",
		Table:      "#35654d",
		TileFill:   "#f8f5ec",
		TileStroke: "#2b2b2b",
		Divider:    "#2b2b2b",
		Pip:        "#1f1f1f",
		Endpoint:   "#f2c14e",
	}
}

// Midnight is a dark scheme: ivory tiles on slate.
func Midnight() Palette {
	return Palette{
		Name:       "midnight",
		Table:      "#1e293b",
		TileFill:   "#e2e8f0",
		TileStroke: "#0f172a",
		Divider:    "#0f172a",
		Pip:        "#111827",
		Endpoint:   "#38bdf8",
	}
}

// PaletteByName resolves a scheme identifier to its palette.
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case "classic", "":
		return Classic(), true
	case "midnight":
		return Midnight(), true
	}
	return Palette{}, false
}

// PaletteNames lists the known scheme identifiers, default first.
func PaletteNames() []string { return []string{"classic", "midnight"} }
