// Package eco provides ECO (Encyclopedia of Chess Openings) lookup.
package eco

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
)

// Opening represents an ECO opening classification.
type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

func (o Opening) String() string { return o.ECO + " " + o.Name }

// Database holds ECO opening data indexed by position key.
type Database struct {
	byPosition map[string]Opening
	count      int
	skipped    int
	log        zerolog.Logger
}

// NewDatabase creates an empty ECO database.
func NewDatabase(log zerolog.Logger) *Database {
	return &Database{
		byPosition: make(map[string]Opening),
		log:        log,
	}
}

// LoadDir loads all .tsv files from a directory.
func (db *Database) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .tsv files found in %s", dir)
	}

	for _, file := range files {
		if err := db.LoadFile(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	db.log.Info().Str("dir", dir).Int("openings", db.count).Int("skipped", db.skipped).Msg("eco loaded")
	return nil
}

// LoadFile loads a single TSV file with columns eco, name, pgn.
func (db *Database) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 && strings.HasPrefix(line, "eco\t") {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}

		key, err := lineKey(parts[2])
		if err != nil {
			db.skipped++
			db.log.Debug().Err(err).Str("file", filepath.Base(path)).Int("line", lineNum).Msg("skipping eco line")
			continue
		}
		db.byPosition[key] = Opening{ECO: parts[0], Name: parts[1]}
		db.count++
	}

	return scanner.Err()
}

// lineKey replays movetext like "1. e4 e5 2. Nf3 Nc6" from the starting
// position and returns the final position key.
func lineKey(text string) (string, error) {
	moves, err := records.SanitizeMovetext(text)
	if err != nil {
		return "", err
	}
	p := board.New()
	for _, tok := range moves {
		if _, err := san.Strict.Apply(p, tok); err != nil {
			return "", err
		}
	}
	return p.Key(), nil
}

// Lookup returns the opening for a position, or nil if not found.
func (db *Database) Lookup(p *board.Position) *Opening {
	if o, ok := db.byPosition[p.Key()]; ok {
		return &o
	}
	return nil
}

// LookupFEN returns the opening for fen, or nil if fen is unknown or malformed.
func (db *Database) LookupFEN(fen string) *Opening {
	p, err := board.ParseFEN(fen)
	if err != nil {
		return nil
	}
	return db.Lookup(p)
}

// Count returns the number of openings loaded.
func (db *Database) Count() int {
	return db.count
}
