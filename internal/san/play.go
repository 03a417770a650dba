package san

import (
	"fmt"

	"github.com/freeeve/repertoire/internal/board"
)

// Play applies a user-typed token to the position described by fen and
// returns the resulting FEN and the move in UCI form. Any failure, including a
// malformed FEN, wraps ErrUnresolvedMove so callers can answer "invalid move".
func Play(fen, token string) (string, board.Move, error) {
	p, err := board.ParseFEN(fen)
	if err != nil {
		return "", 0, &MoveError{Token: token, FEN: fen, Err: ErrUnresolvedMove, Cause: err}
	}
	res, err := Strict.Apply(p, token)
	if err != nil {
		return "", 0, err
	}
	return p.FEN(), res.Move, nil
}

// Locate returns the origin and destination squares of token in fen, for
// highlighting a known move on a board.
func Locate(fen, token string) (from, to board.Square, err error) {
	p, err := board.ParseFEN(fen)
	if err != nil {
		return board.NoSquare, board.NoSquare, fmt.Errorf("locate %q: %w", token, err)
	}
	res, err := Strict.Resolve(p, token)
	if err != nil {
		return board.NoSquare, board.NoSquare, err
	}
	return res.Move.From(), res.Move.To(), nil
}
