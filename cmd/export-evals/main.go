package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/store"
)

func main() {
	var (
		storeDir   = flag.String("store", "./data/store", "store directory")
		outputPath = flag.String("output", "evals.csv", "output CSV file")
		minDepth   = flag.Int("min-depth", 0, "skip evaluations searched shallower than this")
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

	stats := st.Stats()
	fmt.Printf("Store size: %d bytes LSM, %d bytes value log\n", stats.LSMBytes, stats.VLogBytes)

	outFile, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output file: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)

	if err := writer.Write([]string{"fen", "cp", "mate", "depth", "engine"}); err != nil {
		fmt.Fprintf(os.Stderr, "write header: %v\n", err)
		os.Exit(1)
	}

	var checked, exported uint64
	err = st.EachEval(func(key string, e records.Eval) error {
		checked++
		if checked%100000 == 0 {
			fmt.Printf("Checked %d evals, exported %d\n", checked, exported)
		}
		if e.Depth < *minDepth {
			return nil
		}
		row := []string{
			key,
			strconv.Itoa(e.CP),
			strconv.Itoa(e.Mate),
			strconv.Itoa(e.Depth),
			e.Engine,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		exported++
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "iterate error: %v\n", err)
		os.Exit(1)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "csv writer error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDone! Checked %d evals, exported %d to %s\n", checked, exported, *outputPath)
}
