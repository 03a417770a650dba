package store

import (
	"errors"

	"github.com/freeeve/repertoire/internal/records"
)

// ErrNotFound is returned when a key is not found in the store.
var ErrNotFound = errors.New("not found")

// Stats holds counters and on-disk sizes of the store.
type Stats struct {
	TotalReads  uint64
	TotalWrites uint64
	LSMBytes    int64
	VLogBytes   int64
}

// ReadStore is the read side used by the tree builders and the API.
type ReadStore interface {
	Collections() ([]string, error)
	Games(collection string) ([]records.Game, error)
	Studies() ([]string, error)
	Study(name string) (*records.Study, error)
	Eval(fen string) (records.Eval, error)
	Stats() Stats
}

// WriteStore extends ReadStore with the import operations.
type WriteStore interface {
	ReadStore
	PutGames(collection string, games []records.Game) (int, error)
	PutStudy(study *records.Study) error
	PutEval(fen string, e records.Eval) error
	PutEvals(evals map[string]records.Eval) error
}
