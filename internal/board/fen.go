package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses placement, side to move, castling rights, en-passant
// target, halfmove clock and fullmove number. The two counters may be
// omitted and default to 0 and 1.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrMalformedFEN, len(fields))
	}

	p := &Position{EnPassant: NoSquare, FullMoveNumber: 1}
	if err := p.parsePlacement(fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrMalformedFEN, fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			switch fields[2][i] {
			case 'K':
				p.Castling |= WhiteKingSide
			case 'Q':
				p.Castling |= WhiteQueenSide
			case 'k':
				p.Castling |= BlackKingSide
			case 'q':
				p.Castling |= BlackQueenSide
			default:
				return nil, fmt.Errorf("%w: castling field %q", ErrMalformedFEN, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant %q", ErrMalformedFEN, fields[3])
		}
		p.EnPassant = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: halfmove clock %q", ErrMalformedFEN, fields[4])
		}
		p.HalfMoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: fullmove number %q", ErrMalformedFEN, fields[5])
		}
		p.FullMoveNumber = n
	}

	p.refresh()
	return p, nil
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: %d ranks in placement", ErrMalformedFEN, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				if file > 8 {
					return fmt.Errorf("%w: rank %d overflows", ErrMalformedFEN, rank+1)
				}
				continue
			}
			pc := PieceFromChar(c)
			if pc == NoPiece {
				return fmt.Errorf("%w: piece %q", ErrMalformedFEN, c)
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrMalformedFEN, rank+1)
			}
			p.grid[rank][file] = pc
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrMalformedFEN, rank+1, file)
		}
	}
	return nil
}

// FEN renders all six fields.
func (p *Position) FEN() string {
	var sb strings.Builder
	sb.WriteString(p.Placement())
	sb.WriteByte(' ')
	sb.WriteString(p.SideToMove.FENChar())
	sb.WriteByte(' ')
	sb.WriteString(p.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))
	return sb.String()
}

// Placement renders only the piece placement field.
func (p *Position) Placement() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.grid[rank][file]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// Key returns the first four FEN fields of fen.
func Key(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// Key identifies the position for transposition merging: placement, side to
// move, castling rights and the en-passant square only when a capture onto
// it is actually available. Move counters are left out.
func (p *Position) Key() string {
	ep := "-"
	if p.EnPassant.Valid() && p.PawnCaptureOrigins(p.SideToMove, p.EnPassant) != 0 {
		ep = p.EnPassant.String()
	}
	return p.Placement() + " " + p.SideToMove.FENChar() + " " + p.Castling.String() + " " + ep
}
