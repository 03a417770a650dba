package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/graph"
	"github.com/freeeve/repertoire/internal/ingest"
	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/san"
	"github.com/freeeve/repertoire/internal/store"
)

func main() {
	var (
		storeDir   = flag.String("store", "./data/store", "store directory")
		name       = flag.String("tree", "", "collection or study name")
		kind       = flag.String("kind", "opening", "opening or study")
		outputPath = flag.String("output", "", "output CSV file (default stdout)")
		logLevel   = flag.String("log-level", "info", "trace, debug, info, warn or error")
	)
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Usage: export-tree -tree <name> [-kind opening|study] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger(logx.Options{Level: *logLevel, Out: os.Stderr})

	st, err := store.Open(store.Config{
		Dir:    *storeDir,
		Logger: logger.With().Str("component", "store").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("create output file")
		}
		defer f.Close()
		out = f
	}
	w := csv.NewWriter(out)

	var rows int
	switch *kind {
	case "opening":
		rows, err = exportOpening(w, st, *name, logger)
	case "study":
		rows, err = exportStudy(w, st, *name, logger)
	default:
		err = fmt.Errorf("unknown kind %q", *kind)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("tree", *name).Msg("export failed")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logger.Fatal().Err(err).Msg("csv writer error")
	}
	logger.Info().Str("tree", *name).Int("edges", rows).Msg("export complete")
}

// exportOpening writes one row per edge with the statistics of the child.
func exportOpening(w *csv.Writer, st *store.Store, name string, log zerolog.Logger) (int, error) {
	games, err := st.Games(name)
	if err != nil {
		return 0, err
	}
	tree, _, err := graph.BuildOpeningTree(graph.OpeningConfig{
		Name:  name,
		Color: ingest.ViewColor(name),
	}, games, log)
	if err != nil {
		return 0, err
	}
	if err := w.Write([]string{"parent_fen", "move", "uci", "fen", "games", "win", "draw", "loss", "last_played"}); err != nil {
		return 0, err
	}
	rows := 0
	for id := graph.Root; int(id) < tree.Len(); id++ {
		parent := tree.Node(id)
		for _, e := range parent.Children {
			child := tree.Node(e.Child)
			rates := child.WinRates()
			err := w.Write([]string{
				parent.FEN,
				e.Move,
				e.UCI,
				child.FEN,
				strconv.Itoa(child.Count()),
				strconv.FormatFloat(rates[0], 'f', 4, 64),
				strconv.FormatFloat(rates[1], 'f', 4, 64),
				strconv.FormatFloat(rates[2], 'f', 4, 64),
				strconv.FormatInt(child.LastPlayed(), 10),
			})
			if err != nil {
				return rows, err
			}
			rows++
		}
	}
	return rows, nil
}

// exportStudy writes one row per edge with the stored evaluation of the
// child, if any.
func exportStudy(w *csv.Writer, st *store.Store, name string, log zerolog.Logger) (int, error) {
	study, err := st.Study(name)
	if err != nil {
		return 0, err
	}
	tree, _, err := graph.BuildStudyTree(study, san.Loose, log)
	if err != nil {
		return 0, err
	}
	tree.AttachEvals(st.Eval)
	if err := w.Write([]string{"parent_fen", "move", "uci", "fen", "testable", "cp", "mate", "depth"}); err != nil {
		return 0, err
	}
	rows := 0
	for id := graph.Root; int(id) < tree.Len(); id++ {
		parent := tree.Node(id)
		for _, e := range parent.Children {
			child := tree.Node(e.Child)
			row := []string{parent.FEN, e.Move, e.UCI, child.FEN, strconv.FormatBool(child.Testable), "", "", ""}
			if child.Eval != nil {
				row[5] = strconv.Itoa(child.Eval.CP)
				row[6] = strconv.Itoa(child.Eval.Mate)
				row[7] = strconv.Itoa(child.Eval.Depth)
			}
			if err := w.Write(row); err != nil {
				return rows, err
			}
			rows++
		}
	}
	return rows, nil
}
