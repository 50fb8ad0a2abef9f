package server

import (
	"encoding/json"
	"testing"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/game"
)

func TestEncodeRoundTrip(t *testing.T) {
	raw := encode(MsgTilePlayed, TilePlayedPayload{
		PlayerID: "p1",
		Domino:   domino.MustParse("6-4"),
		Side:     game.SideLeft,
	})

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Unmarshal(envelope) error = %v", err)
	}
	if env.Type != MsgTilePlayed {
		t.Errorf("Type = %q, want %q", env.Type, MsgTilePlayed)
	}

	var p TilePlayedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("Unmarshal(payload) error = %v", err)
	}
	if p.PlayerID != "p1" {
		t.Errorf("PlayerID = %q, want p1", p.PlayerID)
	}
	if p.Domino != domino.MustParse("6-4") {
		t.Errorf("Domino = %v, want 6-4", p.Domino)
	}
	if p.Side != game.SideLeft {
		t.Errorf("Side = %q, want left", p.Side)
	}
	if p.AutoPlayed {
		t.Error("AutoPlayed = true, want false")
	}
}

func TestEncodeNilPayload(t *testing.T) {
	raw := encode(MsgGameStarted, nil)

	want := `{"type":"game_started"}`
	if string(raw) != want {
		t.Errorf("encode(game_started, nil) = %s, want %s", raw, want)
	}
}

func TestEnvelopeDecodesClientFrame(t *testing.T) {
	frame := []byte(`{"type":"play_tile","payload":{"domino":{"left":3,"right":5},"side":"right"}}`)

	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if env.Type != MsgPlayTile {
		t.Fatalf("Type = %q, want %q", env.Type, MsgPlayTile)
	}

	var p PlayTilePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("Unmarshal(payload) error = %v", err)
	}
	if p.Domino.Left != 3 || p.Domino.Right != 5 {
		t.Errorf("Domino = %d-%d, want 3-5", p.Domino.Left, p.Domino.Right)
	}
	if p.Side != "right" {
		t.Errorf("Side = %q, want right", p.Side)
	}
}

func TestClaimTilePayloadDistinguishesZero(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		wantIndex *int
	}{
		{"position zero", `{"tile_index":0}`, intPtr(0)},
		{"position seven", `{"tile_index":7}`, intPtr(7)},
		{"missing index", `{}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ClaimTilePayload
			if err := json.Unmarshal([]byte(tt.frame), &p); err != nil {
				t.Fatalf("Unmarshal error = %v", err)
			}
			if (p.TileIndex == nil) != (tt.wantIndex == nil) {
				t.Fatalf("TileIndex = %v, want %v", p.TileIndex, tt.wantIndex)
			}
			if p.TileIndex != nil && *p.TileIndex != *tt.wantIndex {
				t.Errorf("TileIndex = %d, want %d", *p.TileIndex, *tt.wantIndex)
			}
		})
	}
}

func intPtr(n int) *int { return &n }
