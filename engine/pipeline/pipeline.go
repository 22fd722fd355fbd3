// Package pipeline runs a circuit document through the full build chain:
// decode, topology build, subsystem flattening, structural validation and
// canonical normalization. Diagnostics accumulate across stages; the
// pipeline only aborts on malformed input it cannot represent at all.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/normalize"
	"github.com/voltforge/voltforge/engine/resolve"
	"github.com/voltforge/voltforge/engine/schema"
	"github.com/voltforge/voltforge/engine/topology"
	"github.com/voltforge/voltforge/engine/validate"
	"github.com/voltforge/voltforge/pkg/fn"
)

// State is threaded through the stages; each stage fills in its own field
// and appends to Diags.
type State struct {
	Doc   *schema.Document
	Cat   *catalog.Catalog
	Root  *topology.Scope
	Reg   *topology.Registry
	Graph *resolve.Graph
	Model *normalize.Model
	Diags diag.List
}

// Outcome is the result of a full pipeline run. Model is nil when any
// error-severity diagnostic was raised; warnings alone never suppress it.
type Outcome struct {
	Model *normalize.Model
	Diags diag.List
}

// Valid reports whether the run produced no error-severity diagnostics.
func (o Outcome) Valid() bool { return !o.Diags.HasErrors() }

// Runner owns the catalog and logger shared across runs.
type Runner struct {
	cat *catalog.Catalog
	log *slog.Logger
}

func New(cat *catalog.Catalog, log *slog.Logger) *Runner {
	if cat == nil {
		cat = catalog.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cat: cat, log: log}
}

// Run executes the full chain for one document.
func (r *Runner) Run(ctx context.Context, doc *schema.Document) (Outcome, error) {
	chain := fn.Pipeline(
		fn.TracedStage("pipeline.build", r.buildStage()),
		fn.TracedStage("pipeline.flatten", r.flattenStage()),
		fn.TracedStage("pipeline.validate", r.validateStage()),
		fn.TracedStage("pipeline.normalize", r.normalizeStage()),
	)

	res := chain(ctx, &State{Doc: doc, Cat: r.cat})
	st, err := res.Unwrap()
	if err != nil {
		return Outcome{}, err
	}

	r.log.InfoContext(ctx, "pipeline complete",
		"model", doc.Name,
		"valid", st.Model != nil,
		"errors", len(st.Diags.Errors()),
		"warnings", len(st.Diags.Warnings()))

	return Outcome{Model: st.Model, Diags: st.Diags}, nil
}

// RunBytes decodes raw JSON and runs the pipeline. Decode failures surface
// as the returned error, not as diagnostics.
func (r *Runner) RunBytes(ctx context.Context, raw []byte) (Outcome, error) {
	doc, err := schema.DecodeBytes(raw)
	if err != nil {
		return Outcome{}, err
	}
	return r.Run(ctx, &doc)
}

func (r *Runner) buildStage() fn.Stage[*State, *State] {
	return func(ctx context.Context, st *State) fn.Result[*State] {
		root, reg, diags := topology.Build(*st.Doc, st.Cat)
		st.Root, st.Reg = root, reg
		st.Diags.Append(diags)
		r.log.DebugContext(ctx, "topology built",
			"model", st.Doc.Name, "ports", reg.Len())
		return fn.Ok(st)
	}
}

func (r *Runner) flattenStage() fn.Stage[*State, *State] {
	return func(ctx context.Context, st *State) fn.Result[*State] {
		g, diags := resolve.Flatten(st.Root, st.Reg)
		st.Graph = g
		st.Diags.Append(diags)
		r.log.DebugContext(ctx, "subsystems flattened",
			"model", st.Doc.Name,
			"components", len(g.Components), "edges", len(g.Edges))
		return fn.Ok(st)
	}
}

func (r *Runner) validateStage() fn.Stage[*State, *State] {
	return func(_ context.Context, st *State) fn.Result[*State] {
		st.Diags.Append(validate.Check(st.Graph, st.Cat))
		return fn.Ok(st)
	}
}

// normalizeStage emits the canonical model only when no structural error was
// raised; ambiguity is surfaced, never serialized.
func (r *Runner) normalizeStage() fn.Stage[*State, *State] {
	return func(_ context.Context, st *State) fn.Result[*State] {
		if !st.Diags.HasErrors() {
			st.Model = normalize.Canonical(st.Doc.Name, st.Graph, st.Doc.Parameters)
		}
		return fn.Ok(st)
	}
}
