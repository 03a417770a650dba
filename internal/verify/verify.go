// Package verify replays games through both the local resolver and the
// independent pgn move generator and reports where they disagree.
package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
)

// ErrDiverged is returned when the two replays reach different positions.
var ErrDiverged = errors.New("replays diverged")

// ErrEndFEN is returned when the replayed final position differs from the
// end_fen recorded with the game.
var ErrEndFEN = errors.New("end position does not match end_fen")

// Mismatch describes the first ply where the replays disagree.
type Mismatch struct {
	Ply       int    `json:"ply"`
	Move      string `json:"move"`
	Local     string `json:"local"`
	Reference string `json:"reference"`
}

// Report is the result of verifying one game.
type Report struct {
	Game     string    `json:"game"`
	Plies    int       `json:"plies"`
	FinalFEN string    `json:"final_fen,omitempty"`
	Mismatch *Mismatch `json:"mismatch,omitempty"`
	Err      error     `json:"-"`
}

// OK reports whether the game replayed identically in both generators.
func (r Report) OK() bool { return r.Err == nil }

// compareKey keeps placement, side to move and castling. The en-passant
// field is left out because generators differ on when they emit it.
func compareKey(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}

// refToken converts a move token to the form pgn.ParseSAN accepts.
func refToken(tok string) string {
	tok = strings.TrimRight(tok, "+#!?")
	if strings.HasPrefix(tok, "0-0") {
		tok = strings.ReplaceAll(tok, "0", "O")
	}
	return tok
}

// Game replays g with resolver and with pgn, comparing positions after
// every ply.
func Game(g *records.Game, resolver *san.Resolver) Report {
	rep := Report{Game: g.Key()}
	start := g.StartFEN
	if start == "" {
		start = board.StartFEN
	}

	moves, err := g.MoveList()
	if err != nil {
		rep.Err = err
		return rep
	}
	local, err := board.ParseFEN(start)
	if err != nil {
		rep.Err = err
		return rep
	}
	ref, err := pgn.NewGame(start)
	if err != nil {
		rep.Err = fmt.Errorf("reference: %w", err)
		return rep
	}

	for i, tok := range moves {
		if _, err := resolver.Apply(local, tok); err != nil {
			rep.Err = fmt.Errorf("ply %d: %w", i+1, err)
			return rep
		}
		mv, err := pgn.ParseSAN(ref, refToken(tok))
		if err != nil {
			rep.Err = fmt.Errorf("ply %d: reference rejected %q: %w", i+1, tok, err)
			return rep
		}
		if err := pgn.ApplyMove(ref, mv); err != nil {
			rep.Err = fmt.Errorf("ply %d: reference apply %q: %w", i+1, tok, err)
			return rep
		}
		rep.Plies++

		got, want := local.FEN(), ref.ToFEN()
		if compareKey(got) != compareKey(want) {
			rep.Mismatch = &Mismatch{Ply: i + 1, Move: tok, Local: got, Reference: want}
			rep.Err = fmt.Errorf("ply %d (%s): %w", i+1, tok, ErrDiverged)
			return rep
		}
	}

	rep.FinalFEN = local.FEN()
	if g.EndFEN != "" && compareKey(g.EndFEN) != compareKey(rep.FinalFEN) {
		rep.Mismatch = &Mismatch{Ply: rep.Plies, Local: rep.FinalFEN, Reference: g.EndFEN}
		rep.Err = ErrEndFEN
	}
	return rep
}

// Summary counts the outcome of a batch.
type Summary struct {
	Checked int
	Passed  int
	Failed  []Report
}

// Games verifies every game and logs each failure.
func Games(games []records.Game, resolver *san.Resolver, log zerolog.Logger) Summary {
	var sum Summary
	for i := range games {
		rep := Game(&games[i], resolver)
		sum.Checked++
		if rep.OK() {
			sum.Passed++
			continue
		}
		sum.Failed = append(sum.Failed, rep)
		ev := log.Warn().Err(rep.Err).Str("game", rep.Game).Int("plies", rep.Plies)
		if rep.Mismatch != nil {
			ev = ev.Str("move", rep.Mismatch.Move).Str("local", rep.Mismatch.Local).Str("reference", rep.Mismatch.Reference)
		}
		ev.Msg("verification failed")
	}
	log.Info().Int("checked", sum.Checked).Int("passed", sum.Passed).Int("failed", len(sum.Failed)).Msg("verification complete")
	return sum
}
