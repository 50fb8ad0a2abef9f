package domino

// Unicode domino tile glyphs (block U+1F030..U+1F093). Horizontal tiles
// start at U+1F031 (0-0) and advance left-pip-major; vertical tiles start
// at U+1F063 with the same ordering.
const (
	glyphHorizontalBase = 0x1F031
	glyphVerticalBase   = 0x1F063
	glyphHorizontalBack = '\U0001F030'
	glyphVerticalBack   = '\U0001F062'
)

// Glyph returns the horizontal Unicode glyph for the tile, e.g. 🁓 for 3-3.
func (d Domino) Glyph() rune {
	return rune(glyphHorizontalBase + d.Left*(MaxPip+1) + d.Right)
}

// GlyphVertical returns the vertical Unicode glyph for the tile.
func (d Domino) GlyphVertical() rune {
	return rune(glyphVerticalBase + d.Left*(MaxPip+1) + d.Right)
}

// GlyphBack returns the face-down tile glyph, horizontal or vertical.
func GlyphBack(vertical bool) rune {
	if vertical {
		return glyphVerticalBack
	}
	return glyphHorizontalBack
}
