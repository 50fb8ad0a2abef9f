package layout

import (
	"math"
	"testing"
)

func TestResolveGeometry(t *testing.T) {
	cfg := Config{}.withDefaults()

	tests := []struct {
		name      string
		width     float64
		wantScale float64
		wantTileW float64
		wantTileH float64
		wantGap   float64
	}{
		{
			// 800 / (5*64+64) = 2.08, capped at 1.5.
			name:      "wide viewport hits scale cap",
			width:     800,
			wantScale: 1.5,
			wantTileW: 96,
			wantTileH: 48,
			wantGap:   6,
		},
		{
			name:      "mid viewport scales down",
			width:     300,
			wantScale: 300.0 / 384.0,
			wantTileW: 50,
			wantTileH: 25,
			wantGap:   3,
		},
		{
			// Gap would floor to 1; the 2px minimum kicks in.
			name:      "narrow viewport hits gap floor",
			width:     100,
			wantScale: 100.0 / 384.0,
			wantTileW: 16,
			wantTileH: 8,
			wantGap:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := resolveGeometry(cfg, Viewport{Width: tt.width, Height: 600})

			if math.Abs(geo.scale-tt.wantScale) > 1e-9 {
				t.Errorf("scale = %v, want %v", geo.scale, tt.wantScale)
			}
			if geo.tileW != tt.wantTileW {
				t.Errorf("tileW = %v, want %v", geo.tileW, tt.wantTileW)
			}
			if geo.tileH != tt.wantTileH {
				t.Errorf("tileH = %v, want %v", geo.tileH, tt.wantTileH)
			}
			if geo.gap != tt.wantGap {
				t.Errorf("gap = %v, want %v", geo.gap, tt.wantGap)
			}
		})
	}
}

func TestResolveGeometryCustomConfig(t *testing.T) {
	cfg := Config{BaseTileWidth: 50, BaseTileHeight: 24, TilesPerRow: 6}.withDefaults()

	// Denominator is 6*50 + 50 = 350.
	geo := resolveGeometry(cfg, Viewport{Width: 350, Height: 600})
	if geo.scale != 1.0 {
		t.Errorf("scale = %v, want 1.0", geo.scale)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.BaseTileWidth != DefaultBaseTileWidth {
		t.Errorf("BaseTileWidth = %v, want %v", cfg.BaseTileWidth, DefaultBaseTileWidth)
	}
	if cfg.TilesPerRow != DefaultTilesPerRow {
		t.Errorf("TilesPerRow = %v, want %v", cfg.TilesPerRow, DefaultTilesPerRow)
	}
	if cfg.TilesPerColumn != DefaultTilesPerColumn {
		t.Errorf("TilesPerColumn = %v, want %v", cfg.TilesPerColumn, DefaultTilesPerColumn)
	}
	if cfg.Padding != DefaultPadding {
		t.Errorf("Padding = %v, want %v", cfg.Padding, DefaultPadding)
	}

	// Explicit values survive.
	custom := Config{TilesPerRow: 7}.withDefaults()
	if custom.TilesPerRow != 7 {
		t.Errorf("TilesPerRow = %v, want 7", custom.TilesPerRow)
	}
}

func TestFingerprintMatches(t *testing.T) {
	f := fingerprint{width: 800, height: 600, scale: 1.5}

	tests := []struct {
		name  string
		vp    Viewport
		scale float64
		want  bool
	}{
		{"identical", Viewport{Width: 800, Height: 600}, 1.5, true},
		{"scale within tolerance", Viewport{Width: 800, Height: 600}, 1.505, true},
		{"scale beyond tolerance", Viewport{Width: 800, Height: 600}, 1.52, false},
		{"width changed", Viewport{Width: 801, Height: 600}, 1.5, false},
		{"height changed", Viewport{Width: 800, Height: 601}, 1.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.matches(tt.vp, tt.scale); got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
