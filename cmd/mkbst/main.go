// Command mkbst builds a bstreefile from a CSV-like entry stream, mirroring
// the reference mkbst binary: a thin argument-parsing shell around the
// library, with no query logic of its own.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"iter"
	"log"
	"os"

	"github.com/xDarkicex/bstreefile/bstreefile"
	"github.com/xDarkicex/bstreefile/internal/codec"
)

func main() {
	input := flag.String("input", "", "input CSV path (default stdin)")
	output := flag.String("output", "", "output file basename (required)")
	idType := flag.String("id-type", "", "id type tag (u3..u8 or t<n>); omit for sequential row-number ids")
	valType := flag.String("val-type", "", "value type tag (u3..u8, i3..i8, f4, f8 or t<n>) (required)")
	idCol := flag.String("id-col", "", "id column name (requires -has-header); omit for sequential row-number ids")
	valCol := flag.String("val-col", "", "value column name (requires -has-header); omit to use the sole column")
	hasHeader := flag.Bool("has-header", true, "the CSV input has a header row")
	l1KB := flag.Int("l1-kb", 32, "logical L1 page budget in kilobytes")
	diskKB := flag.Int("disk-kb", 8192, "logical disk page budget in kilobytes")
	fillFactor := flag.Float64("fill-factor", 1.0, "fraction of l1-kb actually packed per L1 page")
	chunkSize := flag.Int("chunk-size", 50_000_000, "entries per in-memory sort batch")
	kway := flag.Int("kway", 7, "external merge sort fan-in")
	tempDir := flag.String("temp-dir", ".bstree_tmp", "scratch directory for the external sort")
	flag.Parse()

	if *output == "" || *valType == "" {
		fmt.Fprintln(os.Stderr, "mkbst: -output and -val-type are required")
		flag.Usage()
		os.Exit(2)
	}

	in := os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("mkbst: %v", err)
		}
		defer f.Close()
		in = f
	}

	valFT, err := codec.ParseValType(*valType)
	if err != nil {
		log.Fatalf("mkbst: %v", err)
	}
	var idFT codec.FieldType
	autoID := *idType == ""
	if !autoID {
		idFT, err = codec.ParseIDType(*idType)
		if err != nil {
			log.Fatalf("mkbst: %v", err)
		}
	} else {
		idFT = codec.FieldType{Kind: codec.KindUnsigned, Width: 5}
	}

	entries, n, err := readEntries(in, *hasHeader, *idCol, *valCol, idFT, valFT, autoID)
	if err != nil {
		log.Fatalf("mkbst: %v", err)
	}

	builder, err := bstreefile.NewBuilder(*output, idFT, valFT,
		bstreefile.WithL1KB(*l1KB),
		bstreefile.WithDiskKB(*diskKB),
		bstreefile.WithFillFactor(*fillFactor),
		bstreefile.WithChunkSize(*chunkSize),
		bstreefile.WithKway(*kway),
		bstreefile.WithTempDir(*tempDir),
	)
	if err != nil {
		log.Fatalf("mkbst: %v", err)
	}

	seq := func(yield func(bstreefile.Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
	if err := builder.Build(context.Background(), iter.Seq2[bstreefile.Entry, error](seq), n); err != nil {
		log.Fatalf("mkbst: %v", err)
	}
	fmt.Fprintf(os.Stderr, "mkbst: wrote %d entries\n", n)
}

func readEntries(r io.Reader, hasHeader bool, idCol, valCol string, idFT, valFT codec.FieldType, autoID bool) ([]bstreefile.Entry, uint64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	idIdx, valIdx := -1, 0
	if hasHeader {
		header, err := cr.Read()
		if err != nil {
			return nil, 0, fmt.Errorf("read header: %w", err)
		}
		for i, name := range header {
			if idCol != "" && name == idCol {
				idIdx = i
			}
			if valCol != "" && name == valCol {
				valIdx = i
			} else if valCol == "" && len(header) == 1 {
				valIdx = 0
			}
		}
	}
	if idIdx < 0 && idFT.Kind == codec.KindString {
		return nil, 0, fmt.Errorf("row-number ids need an unsigned id type, got %s", codec.FormatTag(idFT))
	}

	var entries []bstreefile.Entry
	var row int
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", row, err)
		}

		var id bstreefile.Value
		if autoID {
			id = bstreefile.Value{Field: idFT, U: uint64(row)}
		} else if idIdx >= 0 && idIdx < len(record) {
			id, err = codec.ParseValue(idFT, record[idIdx])
			if err != nil {
				return nil, 0, fmt.Errorf("row %d: id: %w", row, err)
			}
		} else {
			id = bstreefile.Value{Field: idFT, U: uint64(row)}
		}

		if valIdx >= len(record) {
			return nil, 0, fmt.Errorf("row %d: missing value column", row)
		}
		val, err := codec.ParseValue(valFT, record[valIdx])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: value: %w", row, err)
		}

		entries = append(entries, bstreefile.Entry{ID: id, Val: val})
		row++
	}
	return entries, uint64(len(entries)), nil
}
