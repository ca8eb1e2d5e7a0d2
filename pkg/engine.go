package versync

import (
	"context"

	"github.com/rs/zerolog"
)

// Engine applies a rule table for a version, one rule at a time in table
// order. A failure on one rule never stops the others.
type Engine struct {
	fs     FS
	log    zerolog.Logger
	dryRun bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS replaces the filesystem used to read and replace targets.
func WithFS(fsys FS) Option {
	return func(e *Engine) { e.fs = fsys }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithDryRun computes outcomes without writing any file.
func WithDryRun(dry bool) Option {
	return func(e *Engine) { e.dryRun = dry }
}

// NewEngine returns an Engine on the real filesystem that logs nowhere.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{fs: OSFS{}, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run applies every rule in table to its file. Per-rule problems are
// recorded in the returned outcomes. The only error returned is ctx's,
// checked before each rule is started; the outcomes gathered up to that
// point are returned alongside it.
func (e *Engine) Run(ctx context.Context, v Version, table *RuleTable) (*Result, error) {
	editor := &Editor{FS: e.fs, Log: e.log, DryRun: e.dryRun}
	res := &Result{
		Version:  v,
		Outcomes: make([]EditOutcome, 0, table.Len()),
	}

	e.log.Info().
		Str("version", v.String()).
		Int("rules", table.Len()).
		Bool("dry_run", e.dryRun).
		Msg("synchronizing files")

	for _, rule := range table.Rules() {
		if err := ctx.Err(); err != nil {
			e.log.Warn().Err(err).Int("done", len(res.Outcomes)).Msg("synchronization interrupted")
			return res, err
		}
		o := editor.Apply(rule, v)
		res.Outcomes = append(res.Outcomes, o)
		res.Summary.add(o)

		ev := e.log.Info()
		switch {
		case o.Status == Failed:
			ev = e.log.Warn().Err(o.Err)
		case o.Change == Downgrade:
			ev = e.log.Warn().Str("previous", o.Previous)
		}
		ev.Str("path", rule.Path).Str("status", o.Status.String()).Int("matches", o.Matches).Msg("rule processed")
	}

	e.log.Info().
		Int("applied", res.Summary.Applied).
		Int("no_match", res.Summary.NoMatch).
		Int("failed", res.Summary.Failed).
		Msg("synchronization finished")
	return res, nil
}

// Run parses versionText, validates defs and synchronizes every rule.
// An invalid version or rule table is returned as an error before any file
// is opened.
func Run(ctx context.Context, versionText string, defs []RuleDef, opts ...Option) (*Result, error) {
	v, err := ParseVersion(versionText)
	if err != nil {
		return nil, err
	}
	table, err := NewRuleTable(defs)
	if err != nil {
		return nil, err
	}
	return NewEngine(opts...).Run(ctx, v, table)
}

// DryRun is Run without writing any file.
func DryRun(ctx context.Context, versionText string, defs []RuleDef, opts ...Option) (*Result, error) {
	return Run(ctx, versionText, defs, append(opts, WithDryRun(true))...)
}
