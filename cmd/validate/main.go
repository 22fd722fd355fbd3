// Package main implements the voltforge validate CLI: run circuit documents
// through the build and validation pipeline and report diagnostics.
//
// Usage:
//
//	validate [-json] [-out dir] [-workers n] file.json [file.json ...]
//
// Exit code is 0 when every document is structurally valid, 1 otherwise.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/normalize"
	"github.com/voltforge/voltforge/engine/pipeline"
	"github.com/voltforge/voltforge/pkg/fn"
)

type fileOutcome struct {
	Path  string
	Model *normalize.Model
	Diags diag.List
}

func main() {
	jsonOut := flag.Bool("json", false, "emit machine-readable JSON instead of text")
	outDir := flag.String("out", "", "write canonical models into this directory")
	workers := flag.Int("workers", 4, "concurrent files")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: validate [-json] [-out dir] [-workers n] file.json ...")
		os.Exit(2)
	}

	runner := pipeline.New(catalog.Default(), logger)
	ctx := context.Background()

	results := fn.ParMapResult(files, *workers, func(path string) fn.Result[fileOutcome] {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fn.Errf[fileOutcome]("%s: %w", path, err)
		}
		out, err := runner.RunBytes(ctx, raw)
		if err != nil {
			return fn.Errf[fileOutcome]("%s: %w", path, err)
		}
		return fn.Ok(fileOutcome{Path: path, Model: out.Model, Diags: out.Diags})
	})

	failed := false
	for i, res := range results {
		oc, err := res.Unwrap()
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if oc.Diags.HasErrors() {
			failed = true
		}
		report(oc, *jsonOut)

		if *outDir != "" && !oc.Diags.HasErrors() {
			if err := writeModel(*outDir, files[i], oc.Model); err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

func report(oc fileOutcome, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.Encode(struct {
			Path        string    `json:"path"`
			Valid       bool      `json:"valid"`
			Diagnostics diag.List `json:"diagnostics"`
		}{oc.Path, !oc.Diags.HasErrors(), oc.Diags})
		return
	}

	if oc.Model != nil {
		fmt.Printf("%s: ok (%d components, %d connections)\n",
			oc.Path, len(oc.Model.Components), len(oc.Model.Connections))
	} else {
		fmt.Printf("%s: invalid\n", oc.Path)
	}
	for _, d := range oc.Diags {
		fmt.Printf("  %s\n", d.Error())
	}
}

func writeModel(dir, src string, m *normalize.Model) error {
	data, err := m.MarshalCanonical()
	if err != nil {
		return err
	}
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	dst := filepath.Join(dir, base[:len(base)-len(ext)]+".canonical.json")
	return os.WriteFile(dst, append(data, '\n'), 0o644)
}
