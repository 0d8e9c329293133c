package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/Mazdaywik/evalexpr"
)

const (
	appName     = "evalexpr"
	historyFile = ".evalexpr_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("evalexpr %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", evalexpr.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(evalexpr.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`evalexpr %s

Usage:
  %s run <file.ee> [-trace] [-result]   Run a program.
  %s repl                               Start the REPL.
  %s version                            Print the version.

`, evalexpr.Version, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	traceFlag := fs.Bool("trace", false, "log each executed instruction")
	resultFlag := fs.Bool("result", false, "print the program's final value")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.ee> [-trace] [-result]\n", appName)
		return 2
	}
	file := fs.Arg(0)

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	opts := []evalexpr.Option{}
	if *traceFlag {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.TraceLevel).
			With().Timestamp().Logger()
		opts = append(opts, evalexpr.WithTrace(logger))
	}

	ip := evalexpr.NewInterpreter(opts...)
	v, err := ip.EvalSource(file, string(src))
	if err != nil {
		// A compilation fault prevents execution; either way the process
		// exits non-zero.
		fmt.Fprintln(os.Stderr, red(evalexpr.WrapErrorWithSource(err, file, string(src)).Error()))
		return 1
	}
	if *resultFlag {
		fmt.Println(evalexpr.FormatValue(v))
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := evalexpr.NewInterpreter()

	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":env":
				for _, n := range ip.Env().Names() {
					fmt.Println(n)
				}
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		v, err := ip.EvalSource("<repl>", code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(evalexpr.WrapErrorWithSource(err, "<repl>", code).Error()))
			continue
		}
		fmt.Println(blue(evalexpr.FormatValue(v)))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readInput collects lines until the input compiles past end-of-input: a
// syntax fault at EOF means "keep typing" and switches to the continuation
// prompt.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		if _, cerr := evalexpr.Compile("<repl>", src); cerr != nil {
			var pe *evalexpr.ParseError
			if errors.As(cerr, &pe) && pe.AtEOF {
				continue
			}
		}
		return src, true
	}
}
