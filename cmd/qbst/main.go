// Command qbst answers the six query operations against a bstreefile,
// mirroring the reference qbst binary's mode-dispatch shape.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xDarkicex/bstreefile/bstreefile"
	"github.com/xDarkicex/bstreefile/internal/codec"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: qbst FILE MODE [args...]")
		fmt.Fprintln(os.Stderr, "modes: info | data [limit] | get_first VALUE | all VALUE [limit] [-count] |")
		fmt.Fprintln(os.Stderr, "       nn VALUE [dmax] | knn VALUE K [dmax] | range LO HI [limit] [-count]")
		os.Exit(2)
	}
	path, mode := args[0], args[1]
	rest := args[2:]

	q, err := bstreefile.Open(path)
	if err != nil {
		log.Fatalf("qbst: %v", err)
	}
	defer q.Close()

	info := q.Info()
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	countOnly := len(rest) > 0 && rest[len(rest)-1] == "-count"
	switch mode {
	case "info":
		fmt.Fprintf(w, "n_entries=%d entry_byte_size=%d id_type=%s val_type=%s n_l1=%d n_l1_in_ld=%d\n",
			info.NEntries, info.EntryByteSize, codec.FormatTag(info.IDType), codec.FormatTag(info.ValType),
			info.NL1, info.NL1InLD)

	case "data":
		limit := 0
		if len(rest) > 0 {
			fmt.Sscanf(rest[0], "%d", &limit)
		}
		entries, err := q.Data(limit)
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		fmt.Fprintln(w, "id,val")
		for _, e := range entries {
			fmt.Fprintf(w, "%s,%s\n", codec.FormatValue(e.ID), codec.FormatValue(e.Val))
		}

	case "get_first":
		if len(rest) < 1 {
			log.Fatal("qbst: get_first requires VALUE")
		}
		v, err := codec.ParseValue(info.ValType, rest[0])
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		e, found, err := q.GetFirst(v)
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		fmt.Fprintln(w, "id,val")
		if found {
			fmt.Fprintf(w, "%s,%s\n", codec.FormatValue(e.ID), codec.FormatValue(e.Val))
		}

	case "all":
		if len(rest) < 1 {
			log.Fatal("qbst: all requires VALUE")
		}
		v, err := codec.ParseValue(info.ValType, rest[0])
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		limit := 0
		if len(rest) > 1 {
			fmt.Sscanf(rest[1], "%d", &limit)
		}
		if countOnly {
			c, err := q.AllCount(v, limit)
			if err != nil {
				log.Fatalf("qbst: %v", err)
			}
			fmt.Fprintln(w, c)
			break
		}
		entries, err := q.All(v, limit)
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		fmt.Fprintln(w, "id,val")
		for _, e := range entries {
			fmt.Fprintf(w, "%s,%s\n", codec.FormatValue(e.ID), codec.FormatValue(e.Val))
		}

	case "nn":
		if len(rest) < 1 {
			log.Fatal("qbst: nn requires VALUE")
		}
		v, err := codec.ParseValue(info.ValType, rest[0])
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		var dMax *bstreefile.Value
		if len(rest) > 1 {
			d, err := codec.ParseValue(info.ValType, rest[1])
			if err != nil {
				log.Fatalf("qbst: %v", err)
			}
			dMax = &d
		}
		n, found, err := q.NN(v, dMax)
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		fmt.Fprintln(w, "distance,id,val")
		if found {
			fmt.Fprintf(w, "%s,%s,%s\n", codec.FormatValue(n.Distance), codec.FormatValue(n.Entry.ID), codec.FormatValue(n.Entry.Val))
		}

	case "knn":
		if len(rest) < 2 {
			log.Fatal("qbst: knn requires VALUE K")
		}
		v, err := codec.ParseValue(info.ValType, rest[0])
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		var k int
		fmt.Sscanf(rest[1], "%d", &k)
		var dMax *bstreefile.Value
		if len(rest) > 2 {
			d, err := codec.ParseValue(info.ValType, rest[2])
			if err != nil {
				log.Fatalf("qbst: %v", err)
			}
			dMax = &d
		}
		results, err := q.KNN(v, k, dMax)
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		fmt.Fprintln(w, "distance,id,val")
		for _, n := range results {
			fmt.Fprintf(w, "%s,%s,%s\n", codec.FormatValue(n.Distance), codec.FormatValue(n.Entry.ID), codec.FormatValue(n.Entry.Val))
		}

	case "range":
		if len(rest) < 2 {
			log.Fatal("qbst: range requires LO HI")
		}
		lo, err := codec.ParseValue(info.ValType, rest[0])
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		hi, err := codec.ParseValue(info.ValType, rest[1])
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		limit := 0
		if len(rest) > 2 {
			fmt.Sscanf(rest[2], "%d", &limit)
		}
		if countOnly {
			c, err := q.RangeCount(lo, hi, limit)
			if err != nil {
				log.Fatalf("qbst: %v", err)
			}
			fmt.Fprintln(w, c)
			break
		}
		entries, err := q.Range(lo, hi, limit)
		if err != nil {
			log.Fatalf("qbst: %v", err)
		}
		fmt.Fprintln(w, "id,val")
		for _, e := range entries {
			fmt.Fprintf(w, "%s,%s\n", codec.FormatValue(e.ID), codec.FormatValue(e.Val))
		}

	default:
		log.Fatalf("qbst: unknown mode %q", mode)
	}
}
