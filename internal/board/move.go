package board

import "fmt"

// Move is a resolved move packed into a uint32:
//
//	bits 0-5:   from square (0-63)
//	bits 6-11:  to square (0-63)
//	bits 12-14: promotion piece (0=none, 1=Q, 2=R, 3=B, 4=N)
type Move uint32

const (
	moveFromMask   = 0x3F
	moveToMask     = 0xFC0
	movePromoMask  = 0x7000
	moveToShift    = 6
	movePromoShift = 12
)

// promotion codes in the packed encoding
const (
	promoNone = iota
	promoQueen
	promoRook
	promoBishop
	promoKnight
)

var promoKinds = [5]Kind{NoKind, Queen, Rook, Bishop, Knight}

func promoCode(k Kind) uint32 {
	switch k {
	case Queen:
		return promoQueen
	case Rook:
		return promoRook
	case Bishop:
		return promoBishop
	case Knight:
		return promoKnight
	}
	return promoNone
}

// NewMove packs a move. promo is NoKind for non-promotions; kinds that cannot
// be promoted to are dropped.
func NewMove(from, to Square, promo Kind) Move {
	if !from.Valid() || !to.Valid() {
		return 0
	}
	return Move(uint32(from) | uint32(to)<<moveToShift | promoCode(promo)<<movePromoShift)
}

// From returns the origin square.
func (m Move) From() Square { return Square(m & moveFromMask) }

// To returns the destination square.
func (m Move) To() Square { return Square((m & moveToMask) >> moveToShift) }

// Promotion returns the promotion kind or NoKind.
func (m Move) Promotion() Kind {
	code := (m & movePromoMask) >> movePromoShift
	if int(code) >= len(promoKinds) {
		return NoKind
	}
	return promoKinds[code]
}

// UCI renders the move in long algebraic form, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	s := m.From().String() + m.To().String()
	if k := m.Promotion(); k != NoKind {
		s += string(rune(k.Letter() + 'a' - 'A'))
	}
	return s
}

func (m Move) String() string { return m.UCI() }

// ParseUCI reads a long algebraic move such as "g1f3" or "a7a8n".
func ParseUCI(uci string) (Move, error) {
	if len(uci) != 4 && len(uci) != 5 {
		return 0, fmt.Errorf("invalid UCI move %q", uci)
	}
	from, err := ParseSquare(uci[0:2])
	if err != nil {
		return 0, fmt.Errorf("invalid from square in UCI %q", uci)
	}
	to, err := ParseSquare(uci[2:4])
	if err != nil {
		return 0, fmt.Errorf("invalid to square in UCI %q", uci)
	}
	promo := NoKind
	if len(uci) == 5 {
		promo = KindFromLetter(uci[4])
		if promoCode(promo) == promoNone {
			return 0, fmt.Errorf("invalid promotion piece %q", uci[4])
		}
	}
	return NewMove(from, to, promo), nil
}
