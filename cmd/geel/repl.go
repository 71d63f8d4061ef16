package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"github.com/tevino/abool/v2"

	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/interp"
)

const interruptedMsg = "WaaLaJoojiyey"

// prompter is the part of *liner.State the shell loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// shell is one interactive session. Its interpreter, and so every binding,
// lives until the session ends.
type shell struct {
	cfg       Config
	in        *interp.Interpreter
	interrupt *abool.AtomicBool
	out       io.Writer
}

func newShell(cfg Config, stdout, stderr io.Writer) *shell {
	flag := abool.New()
	return &shell{
		cfg:       cfg,
		interrupt: flag,
		out:       stdout,
		in: interp.New(
			interp.WithOutput(stdout),
			interp.WithErrors(stderr),
			interp.WithMaxDepth(cfg.MaxDepth),
			interp.WithInterrupt(flag),
		),
	}
}

func repl(cfg Config, stdout, stderr io.Writer) int {
	fmt.Fprintf(stdout, "geel %s\n", version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.History != "" {
		if f, err := os.Open(cfg.History); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(cfg.History); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sh := newShell(cfg, stdout, stderr)

	// The prompt reads keys in raw mode, so a SIGINT only arrives while a
	// statement runs. It stops that statement, not the shell.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer func() {
		signal.Stop(sigc)
		close(sigc)
	}()
	go watchInterrupt(sigc, sh.interrupt)

	return sh.loop(ln)
}

// watchInterrupt sets flag for every signal on sigc until sigc is closed.
func watchInterrupt(sigc <-chan os.Signal, flag *abool.AtomicBool) {
	for range sigc {
		flag.Set()
	}
}

// loop reads and runs input until end of input.
func (s *shell) loop(p prompter) int {
	for {
		src, err := s.read(p)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			fmt.Fprint(s.out, interruptedMsg+"\r\n")
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprint(s.out, "\r\n")
			return 0
		case err != nil:
			fmt.Fprintln(s.out, err)
			return 1
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		s.interrupt.UnSet()
		s.in.Eval(true, src)
	}
}

// opensBlock reports whether line starts input that runs on past itself: it
// ends in ':', or it is an if header with no ':' yet, whose condition
// continues on ama/iyo lines.
func opensBlock(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasSuffix(trimmed, ":") {
		return true
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 || (fields[0] != ast.KeywordIf && fields[0] != ast.KeywordElif) {
		return false
	}
	return !strings.Contains(trimmed, ":")
}

// read returns one unit of input. A line that opens a block is continued
// until an empty line.
func (s *shell) read(p prompter) (string, error) {
	line, err := p.Prompt(s.cfg.Prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		p.AppendHistory(line)
	}
	if !opensBlock(line) {
		return line, nil
	}

	var b strings.Builder
	b.WriteString(line)
	for {
		next, err := p.Prompt(s.cfg.Continuation)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(next) == "" {
			return b.String(), nil
		}
		p.AppendHistory(next)
		b.WriteByte('\n')
		b.WriteString(next)
	}
}
