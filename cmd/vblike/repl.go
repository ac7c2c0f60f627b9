package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"vblike/internal/diag"
	"vblike/internal/evaluator"
	"vblike/internal/parser"
)

const (
	historyFile = ".vblike_history"
	promptMain  = "vb> "
	promptCont  = "... "
)

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	strict := fs.Bool("strict", false, "abort on every runtime error")
	verbose := fs.Bool("v", false, "debug logging to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := loadConfig(*cfgPath, *strict, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	opts := cfg.EvaluatorOptions()
	opts.Output = evaluator.WriterSink(os.Stdout)
	opts.Diagnostics = evaluator.WriterSink(os.Stderr)
	opts.Logger = newLogger(*verbose)
	ev := evaluator.New(opts)

	fmt.Println("vblike repl. Type :quit to exit.")
	for {
		src, ok := readByParseProbe(ln.Prompt, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(src)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return 0
		case strings.HasPrefix(trimmed, ":"):
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		prog, err := parser.Parse(src)
		if err != nil {
			report(err, src)
			continue
		}
		ctx := context.Background()
		var cancel context.CancelFunc = func() {}
		if t := cfg.Timeout(); t > 0 {
			ctx, cancel = context.WithTimeout(ctx, t)
		}
		err = ev.Run(ctx, prog)
		cancel()
		if err != nil {
			report(err, src)
		}
	}
}

func report(err error, src string) {
	fmt.Fprintln(os.Stderr, strings.TrimRight(diag.Render(err, "", src), "\n"))
}

// readByParseProbe keeps prompting while the buffered input fails to parse
// only because it ended too early.
func readByParseProbe(read func(prompt string) (string, error), prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := read(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// ctrl-c drops the pending input
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.Parse(src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
