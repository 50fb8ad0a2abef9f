// Package game implements Puerto Rican dominoes: a double-six set, hands
// of six, and rounds that accumulate into matches played to a target score.
//
// # Lifecycle
//
// A Game moves through four statuses:
//
//	waiting → picking → playing → finished
//
// Players join while waiting. StartPicking lays all 28 tiles face down on
// a grid; players claim positions until everyone holds six tiles, then
// play begins automatically. The round ends when a hand empties (dominoed)
// or no player can move (blocked).
//
// # Variants
//
//	block     no drawing; pass when stuck
//	draw      draw from the boneyard until playable; pass only when empty
//	allfives  block rules plus points whenever the open ends sum to a
//	          multiple of five
//
// # Matches
//
// A Match wraps a Game across rounds. Two and three player games score
// individually; four player games pair opposite seats into teams. The
// winner of a round leads the next one, and the first side to reach the
// target score wins the match.
//
// # Concurrency
//
// Game and Match methods are safe for concurrent use; each value guards
// its state with a mutex. Methods that depend on wall-clock timing take
// an explicit now so callers and tests control the clock.
package game
