package board

import "errors"

var (
	// ErrMalformedFEN is returned for position strings that cannot be parsed.
	ErrMalformedFEN = errors.New("malformed FEN")
	// ErrIllegalCastle is returned when castling rights, empty squares or
	// attacked squares forbid the requested castle.
	ErrIllegalCastle = errors.New("illegal castle")
	// ErrEmptyOrigin is returned when a move starts on an empty square.
	ErrEmptyOrigin = errors.New("no piece on origin square")
	// ErrWrongSide is returned when the origin holds a piece of the side not to move.
	ErrWrongSide = errors.New("piece does not belong to side to move")
)
