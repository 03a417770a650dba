package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/store"
)

// Columns written by export-evals.
var header = []string{"fen", "cp", "mate", "depth", "engine"}

func main() {
	var (
		storeDir  = flag.String("store", "./data/store", "store directory")
		inputPath = flag.String("input", "evals.csv", "input CSV file")
		batchSize = flag.Int("batch-size", 10000, "evaluations written per batch")
		overwrite = flag.Bool("overwrite", false, "replace evaluations that were searched deeper")
	)
	flag.Parse()

	fmt.Printf("Opening store: %s\n", *storeDir)

	st, err := store.Open(store.Config{
		Dir:    *storeDir,
		Logger: logx.NewLogger(logx.Options{Level: "warn", Out: os.Stderr}),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	inFile, err := os.Open(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input file: %v\n", err)
		os.Exit(1)
	}
	defer inFile.Close()

	reader := csv.NewReader(inFile)
	reader.FieldsPerRecord = -1

	got, err := reader.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read header: %v\n", err)
		os.Exit(1)
	}
	if len(got) < 4 || got[0] != "fen" || got[1] != "cp" {
		fmt.Fprintf(os.Stderr, "invalid header: expected %v, got %v\n", header, got)
		os.Exit(1)
	}

	var imported, skipped, errors uint64
	batch := make(map[string]records.Eval, *batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := st.PutEvals(batch); err != nil {
			fmt.Fprintf(os.Stderr, "put evals: %v\n", err)
			errors += uint64(len(batch))
		} else {
			imported += uint64(len(batch))
		}
		clear(batch)
		fmt.Printf("Imported %d evals (skipped %d, errors %d)\n", imported, skipped, errors)
	}

	fmt.Printf("Importing evals from %s...\n", *inputPath)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "read row: %v\n", err)
			errors++
			continue
		}

		e, err := parseRow(row)
		if err != nil {
			fmt.Fprintf(os.Stderr, "row %q: %v\n", row[0], err)
			errors++
			continue
		}

		// Keep the deeper search unless told otherwise
		if !*overwrite {
			if old, err := st.Eval(row[0]); err == nil && old.Depth >= e.Depth {
				skipped++
				continue
			}
		}

		batch[row[0]] = e
		if len(batch) >= *batchSize {
			flush()
		}
	}
	flush()

	fmt.Printf("\nDone! Imported %d evals (skipped %d, errors %d)\n", imported, skipped, errors)
}

// parseRow reads fen,cp,mate,depth[,engine].
func parseRow(row []string) (records.Eval, error) {
	var e records.Eval
	if len(row) < 4 {
		return e, fmt.Errorf("expected at least 4 columns, got %d", len(row))
	}
	var err error
	if e.CP, err = atoi(row[1]); err != nil {
		return e, fmt.Errorf("cp: %w", err)
	}
	if e.Mate, err = atoi(row[2]); err != nil {
		return e, fmt.Errorf("mate: %w", err)
	}
	if e.Depth, err = atoi(row[3]); err != nil {
		return e, fmt.Errorf("depth: %w", err)
	}
	if len(row) > 4 {
		e.Engine = row[4]
	}
	return e, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
