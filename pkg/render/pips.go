package render

const (
	// pipSpreadRatio positions the outer pip ring relative to the half size.
	pipSpreadRatio = 0.26

	// pipRadiusRatio sizes pip dots relative to the half size.
	pipRadiusRatio = 0.09

	// dividerInsetRatio shortens the divider line from the tile edges.
	dividerInsetRatio = 0.15
)

// pipOffsets returns unit grid offsets for a pip count, arranged the way
// physical tiles stamp them. Multiply by the spread distance to get pixel
// offsets from the half center. Counts outside [0, 6] return nil.
func pipOffsets(count int) [][2]float64 {
	switch count {
	case 1:
		return [][2]float64{{0, 0}}
	case 2:
		return [][2]float64{{-1, -1}, {1, 1}}
	case 3:
		return [][2]float64{{-1, -1}, {0, 0}, {1, 1}}
	case 4:
		return [][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	case 5:
		return [][2]float64{{-1, -1}, {1, -1}, {0, 0}, {-1, 1}, {1, 1}}
	case 6:
		return [][2]float64{{-1, -1}, {-1, 0}, {-1, 1}, {1, -1}, {1, 0}, {1, 1}}
	}
	return nil
}
