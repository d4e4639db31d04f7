// Command verify checks that a rewritten fort.13 differs from its original
// only in the values of the Manning's n per-node block: same line count,
// identical lines outside the block, and unchanged node ids inside it.
//
// Usage:
//
//	go run ./cmd/verify -original fort.13 -modified fort.13.modified [-json]
//
// It exits 0 when the pair is consistent, 1 on any violation or read error
// and 2 on bad flags.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/mannings-editor/internal/adapter/fort13"
	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	original := fs.String("original", "", "path to the unmodified fort.13")
	modified := fs.String("modified", "", "path to the rewritten fort.13")
	asJSON := fs.Bool("json", false, "print the comparison as JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *original == "" || *modified == "" {
		fs.Usage()
		return 2
	}

	c, err := compareFiles(*original, *modified)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			fmt.Fprintf(stderr, "FATAL: encode comparison: %v\n", err)
			return 1
		}
	} else {
		printSummary(stdout, *original, *modified, c)
	}

	if !c.OK() {
		return 1
	}
	return 0
}

func compareFiles(originalPath, modifiedPath string) (fort13.Comparison, error) {
	original, err := os.Open(originalPath)
	if err != nil {
		return fort13.Comparison{}, fmt.Errorf("open original: %w", err)
	}
	defer original.Close()

	modified, err := os.Open(modifiedPath)
	if err != nil {
		return fort13.Comparison{}, fmt.Errorf("open modified: %w", err)
	}
	defer modified.Close()

	return fort13.Compare(original, modified)
}

func printSummary(w io.Writer, originalPath, modifiedPath string, c fort13.Comparison) {
	fmt.Fprintln(w, "=== fort.13 Rewrite Verification ===")
	fmt.Fprintf(w, "  original: %s\n", originalPath)
	fmt.Fprintf(w, "  modified: %s\n", modifiedPath)
	fmt.Fprintf(w, "  lines: %d  records: %d  changed: %d\n", c.Lines, c.Records, c.Changed)
	fmt.Fprintln(w)

	if c.OK() {
		fmt.Fprintln(w, color.GreenString("PASS"))
		return
	}

	for _, v := range c.Violations {
		fmt.Fprintf(w, "  - %s\n", v)
	}
	if extra := c.ViolationCount - len(c.Violations); extra > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", extra)
	}
	fmt.Fprintln(w, color.RedString("FAIL (%d violations)", c.ViolationCount))
}
