// Command genfile generates a synthetic CSV entry stream for exercising
// mkbst and qbst, mirroring the reference generator's seqint/randint/
// seqf64/randf64 modes.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
)

func main() {
	oid := flag.Bool("oid", false, "emit a sequential id column alongside the value")
	mode := flag.String("mode", "seqint", "one of: seqint, randint, seqf64, randf64")
	output := flag.String("output", "", "output file path (default stdout)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: genfile [-mode MODE] [-oid] [-output FILE] N\n\nN is the number of rows to generate.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	var n int
	if _, err := fmt.Sscanf(flag.Arg(0), "%d", &n); err != nil || n < 0 {
		log.Fatalf("genfile: invalid row count %q", flag.Arg(0))
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("genfile: %v", err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	if err := generate(w, *mode, n, *oid); err != nil {
		log.Fatalf("genfile: %v", err)
	}
}

func generate(w *bufio.Writer, mode string, n int, oid bool) error {
	if oid {
		fmt.Fprintln(w, "id,val")
	} else {
		fmt.Fprintln(w, "val")
	}

	emit := func(i int, val string) error {
		var err error
		if oid {
			_, err = fmt.Fprintf(w, "%d,%s\n", i, val)
		} else {
			_, err = fmt.Fprintf(w, "%s\n", val)
		}
		return err
	}

	switch mode {
	case "seqint":
		for i := 0; i < n; i++ {
			if err := emit(i, fmt.Sprintf("%d", i)); err != nil {
				return err
			}
		}
	case "seqf64":
		nf := float64(n)
		for i := 0; i < n; i++ {
			if err := emit(i, fmt.Sprintf("%g", float64(i)/nf)); err != nil {
				return err
			}
		}
	case "randint":
		for i := 0; i < n; i++ {
			j := rand.Intn(n + 1)
			if err := emit(i, fmt.Sprintf("%d", j)); err != nil {
				return err
			}
		}
	case "randf64":
		for i := 0; i < n; i++ {
			if err := emit(i, fmt.Sprintf("%g", rand.Float64())); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown mode %q; must be one of seqint, randint, seqf64, randf64", mode)
	}
	return nil
}
