package store

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/records"
)

// Config configures the store.
type Config struct {
	Dir      string // data directory; ignored when InMemory
	InMemory bool
	Logger   zerolog.Logger
}

// Store is a badger-backed WriteStore. It is safe for concurrent use.
type Store struct {
	db    *badger.DB
	codec *codec
	log   zerolog.Logger

	reads  atomic.Uint64
	writes atomic.Uint64
}

var _ WriteStore = (*Store)(nil)

// Open opens or creates the store.
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("store: Dir is required unless InMemory is set")
	}
	log := cfg.Logger.With().Str("component", "store").Logger()

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = badgerLogger{log: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Dir, err)
	}
	c, err := newCodec()
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("dir", cfg.Dir).Bool("in_memory", cfg.InMemory).Msg("store opened")
	return &Store{db: db, codec: c, log: log}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.codec.close()
	return s.db.Close()
}

func (s *Store) get(key []byte, v any) error {
	s.reads.Add(1)
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return s.codec.unmarshal(val, v)
		})
	})
}

func (s *Store) put(key []byte, v any) error {
	data, err := s.codec.marshal(v)
	if err != nil {
		return err
	}
	s.writes.Add(1)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// scan calls fn for every key with prefix. Values are only read when
// withValues is set.
func (s *Store) scan(prefix []byte, withValues bool, fn func(key, val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = withValues
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if !withValues {
				if err := fn(item.Key(), nil); err != nil {
					return err
				}
				continue
			}
			key := item.KeyCopy(nil)
			if err := item.Value(func(val []byte) error { return fn(key, val) }); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutGames stores games under collection, skipping games whose key is
// already present. It returns the number of games added.
func (s *Store) PutGames(collection string, games []records.Game) (int, error) {
	existing := make(map[string]bool)
	prefix := collectionPrefix(collection)
	err := s.scan(prefix, false, func(key, _ []byte) error {
		existing[string(key[len(prefix):])] = true
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	added := 0
	for i := range games {
		k := games[i].Key()
		if existing[k] {
			continue
		}
		existing[k] = true
		data, err := s.codec.marshal(&games[i])
		if err != nil {
			return added, fmt.Errorf("encode game %s: %w", k, err)
		}
		if err := wb.Set(gameKey(collection, k), data); err != nil {
			return added, err
		}
		added++
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	s.writes.Add(uint64(added))
	s.log.Debug().Str("collection", collection).Int("added", added).Int("offered", len(games)).Msg("games stored")
	return added, nil
}

// Games returns every game of a collection in key order.
func (s *Store) Games(collection string) ([]records.Game, error) {
	var games []records.Game
	err := s.scan(collectionPrefix(collection), true, func(_, val []byte) error {
		var g records.Game
		if err := s.codec.unmarshal(val, &g); err != nil {
			return err
		}
		games = append(games, g)
		return nil
	})
	s.reads.Add(uint64(len(games)))
	if err != nil {
		return nil, fmt.Errorf("games %q: %w", collection, err)
	}
	return games, nil
}

// Collections returns the sorted names of all game collections.
func (s *Store) Collections() ([]string, error) {
	var names []string
	err := s.scan([]byte(prefixGame), false, func(key, _ []byte) error {
		name, ok := collectionOf(key)
		if ok && (len(names) == 0 || names[len(names)-1] != name) {
			names = append(names, name)
		}
		return nil
	})
	return names, err
}

// PutStudy stores or replaces a study.
func (s *Store) PutStudy(study *records.Study) error {
	if _, err := study.Color(); err != nil {
		return err
	}
	return s.put(studyKey(study.Name), study)
}

// Study loads a study by name.
func (s *Store) Study(name string) (*records.Study, error) {
	var st records.Study
	if err := s.get(studyKey(name), &st); err != nil {
		return nil, fmt.Errorf("study %q: %w", name, err)
	}
	return &st, nil
}

// Studies returns the sorted study names.
func (s *Store) Studies() ([]string, error) {
	var names []string
	err := s.scan([]byte(prefixStudy), false, func(key, _ []byte) error {
		names = append(names, string(key[len(prefixStudy):]))
		return nil
	})
	sort.Strings(names)
	return names, err
}

// PutEval stores an evaluation for the position in fen.
func (s *Store) PutEval(fen string, e records.Eval) error {
	if _, err := board.ParseFEN(fen); err != nil {
		return err
	}
	return s.put(evalKey(fen), e)
}

// PutEvals stores many evaluations in one batch.
func (s *Store) PutEvals(evals map[string]records.Eval) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for fen, e := range evals {
		if _, err := board.ParseFEN(fen); err != nil {
			return err
		}
		data, err := s.codec.marshal(e)
		if err != nil {
			return err
		}
		if err := wb.Set(evalKey(fen), data); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	s.writes.Add(uint64(len(evals)))
	return nil
}

// Eval returns the stored evaluation for fen, or ErrNotFound.
func (s *Store) Eval(fen string) (records.Eval, error) {
	var e records.Eval
	err := s.get(evalKey(fen), &e)
	return e, err
}

// EachEval calls fn for every stored evaluation. The position is given as
// the four-field key it was stored under.
func (s *Store) EachEval(fn func(key string, e records.Eval) error) error {
	return s.scan([]byte(prefixEval), true, func(key, val []byte) error {
		var e records.Eval
		if err := s.codec.unmarshal(val, &e); err != nil {
			return err
		}
		return fn(string(key[len(prefixEval):]), e)
	})
}

// Stats returns read/write counters and the database size.
func (s *Store) Stats() Stats {
	lsm, vlog := s.db.Size()
	return Stats{
		TotalReads:  s.reads.Load(),
		TotalWrites: s.writes.Load(),
		LSMBytes:    lsm,
		VLogBytes:   vlog,
	}
}
