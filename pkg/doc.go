// Package pkg provides the core libraries for Capicú multiplayer dominoes.
//
// # Overview
//
// Capicú hosts Puerto Rican dominoes games over HTTP and WebSockets and
// turns any played-tile chain into a spiral arrangement that fits a fixed
// frame. The pkg directory is organized into four main areas:
//
//  1. Game rules: [domino], [game], [rooms]
//  2. Geometry: [board], [layout], [render]
//  3. Orchestration: [pipeline], [cache], [config]
//  4. Infrastructure: [session], [history], [httputil], [observability], [errors]
//
// # Architecture
//
// A match flows through the rule engine while every board change flows
// through the layout engine:
//
//	28-tile double-six set
//	         ↓
//	    [game] package (picking, turns, scoring, teams)
//	         ↓
//	    [board] package (chain serialization + shorthand)
//	         ↓
//	    [layout] package (arm state machine, spiral placement)
//	         ↓
//	    [render] package (SVG, PNG, DOT, JSON sinks)
//
// # Quick Start
//
// Compute and render a chain:
//
//	import (
//	    "github.com/capicuhq/capicu/pkg/board"
//	    "github.com/capicuhq/capicu/pkg/layout"
//	    "github.com/capicuhq/capicu/pkg/render"
//	)
//
//	b, _ := board.Parse("6-6 6-4 4-2")
//	eng := layout.NewEngine(layout.Config{})
//	res := eng.Recompute(b.Tiles, layout.Viewport{Width: 800, Height: 450})
//	svg := render.RenderSVG(res)
//
// Run a CPU match:
//
//	g, _ := game.New(game.VariantBlock, 4)
//	for i := 0; i < 4; i++ {
//	    g.AddCPU(game.CPUName(nil))
//	}
//	m, _ := game.NewMatch(g, game.DefaultTargetScore)
//
// # Main Packages
//
// [domino] - The tile type: pip pairs, doubles, shorthand parsing, glyphs.
//
// [game] - Rules engine for the block, draw, and all-fives variants: the
// picking phase, turn order, move validation, blocked-round detection,
// capicú scoring, and 2v2 teams. [game.Match] chains rounds to a target
// score.
//
// [rooms] - Mutex-guarded room registry with idle cleanup and the turn
// and picking timers that keep unattended games moving.
//
// [board] - Chain serialization (JSON, bson-tagged) and "6-4 4-2"
// shorthand.
//
// [layout] - The spiral layout engine. An arm state machine grows the
// chain from the center, turns near the frame edge, and keeps every
// cached placement byte-identical while the chain grows.
//
// [render] - Output sinks: hand-built SVG with pip dots and rotation
// transforms, Graphviz DOT strips, JSON bundles, and PNG conversion.
//
// [pipeline] - The parse, layout, render stages behind the CLI with
// per-stage cache keys.
//
// [cache] - Content-addressed artifact cache: file-backed, null, and
// scoped variants.
//
// [config] - TOML configuration with CAPICU_* environment overrides.
//
// [session] - Reconnect sessions in memory, on disk, or in Redis; the
// Redis store doubles as the leaderboard.
//
// [history] - Finished-match archive backed by MongoDB.
//
// [httputil] - Retry with backoff for the Redis and Mongo dials.
//
// [observability] - Process-wide hook points for pipeline, cache, and
// game events.
//
// [errors] - Structured errors with a stable code taxonomy shared by the
// CLI and the HTTP layer.
//
// [domino]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/domino
// [game]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/game
// [game.Match]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/game#Match
// [rooms]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/rooms
// [board]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/board
// [layout]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/layout
// [render]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/cache
// [config]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/config
// [session]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/session
// [history]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/history
// [httputil]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/observability
// [errors]: https://pkg.go.dev/github.com/capicuhq/capicu/pkg/errors
package pkg
