// Package driver runs a source file end to end: parse, register functions,
// execute, and report how long each phase took.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vblike/internal/config"
	"vblike/internal/diag"
	"vblike/internal/evaluator"
	"vblike/internal/parser"
)

type Driver struct {
	Output      evaluator.Sink
	Diagnostics evaluator.Sink
	Config      *config.Config
	Logger      *slog.Logger
}

func (d *Driver) defaults() {
	if d.Output == nil {
		d.Output = evaluator.Discard
	}
	if d.Diagnostics == nil {
		d.Diagnostics = evaluator.Discard
	}
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
}

// Run parses and executes src. A lex or parse error stops before anything
// runs. Every error is rendered to Diagnostics and returned.
func (d *Driver) Run(ctx context.Context, name, src string) error {
	d.defaults()
	log := d.Logger.With("file", name)

	d.Output.WriteLine("Parsing...")
	start := time.Now()
	prog, err := parser.Parse(src)
	if err != nil {
		log.Debug("parse failed", "error", err)
		return d.report(err, name, src)
	}
	d.took(start, "parse")
	log.Debug("parsed", "statements", len(prog.Body), "functions", len(prog.Functions))

	opts := d.Config.EvaluatorOptions()
	opts.Output = d.Output
	opts.Diagnostics = d.Diagnostics
	opts.Logger = d.Logger
	ev := evaluator.New(opts)

	if timeout := d.Config.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	d.Output.WriteLine("Running...")
	start = time.Now()
	err = ev.Run(ctx, prog)
	d.took(start, "run")
	if err != nil {
		log.Debug("run failed", "error", err)
		return d.report(err, name, src)
	}
	return nil
}

func (d *Driver) took(start time.Time, phase string) {
	if d.Config.Timing {
		d.Output.WriteLine(fmt.Sprintf("Took %s to %s", time.Since(start), phase))
	}
}

func (d *Driver) report(err error, name, src string) error {
	d.Diagnostics.WriteLine(strings.TrimRight(diag.Render(err, name, src), "\n"))
	return err
}
