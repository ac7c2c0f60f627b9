package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"vblike/internal/config"
	"vblike/internal/driver"
	"vblike/internal/evaluator"
	"vblike/internal/lexer"
	"vblike/internal/parser"
)

type tokenOut struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func printTokens(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	toks, lexErr := lexer.Tokens(string(data))
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, t := range toks {
		if err := enc.Encode(tokenOut{Type: t.Kind.String(), Value: t.Text, Line: t.Pos.Line, Column: t.Pos.Column}); err != nil {
			return err
		}
	}
	return lexErr
}

func printAST(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	prog, err := parser.Parse(string(data))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	parser.Dump(bw, prog)
	return bw.Flush()
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadConfig applies command-line overrides on top of the config file.
func loadConfig(path string, strict, timing bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if strict {
		cfg.Policy = evaluator.Strict.String()
	}
	if timing {
		cfg.Timing = true
	}
	return cfg, nil
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	strict := fs.Bool("strict", false, "abort on every runtime error")
	timing := fs.Bool("timing", false, "report parse and run times")
	verbose := fs.Bool("v", false, "debug logging to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "run: expected exactly one file")
		return 2
	}
	path := fs.Arg(0)

	cfg, err := loadConfig(*cfgPath, *strict, *timing)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := &driver.Driver{
		Output:      evaluator.WriterSink(os.Stdout),
		Diagnostics: evaluator.WriterSink(os.Stderr),
		Config:      cfg,
		Logger:      newLogger(*verbose),
	}
	if err := d.Run(ctx, filepath.Base(path), string(data)); err != nil {
		return 1
	}
	return 0
}

func usage(prog string) {
	fmt.Fprintf(os.Stderr, "Usage: %s [tokens|ast|run|repl] <file>\n", filepath.Base(prog))
}

func main() {
	args := os.Args
	if len(args) < 2 {
		usage(args[0])
		os.Exit(2)
	}
	var err error
	switch args[1] {
	case "tokens", "ast":
		if len(args) < 3 {
			usage(args[0])
			os.Exit(2)
		}
		if args[1] == "tokens" {
			err = printTokens(os.Stdout, args[2])
		} else {
			err = printAST(os.Stdout, args[2])
		}
	case "run":
		os.Exit(cmdRun(args[2:]))
	case "repl":
		os.Exit(cmdRepl(args[2:]))
	case "-h", "-help", "--help", "help":
		usage(args[0])
		return
	default:
		os.Exit(cmdRun(args[1:]))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "[Error]", err)
		os.Exit(1)
	}
}
