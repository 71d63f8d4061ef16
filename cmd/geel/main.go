// Command geel runs geel programs.
//
//	geel                  start the interactive shell
//	geel <file>           run a script
//	geel -q <text>        print the tokens of text
//	geel -k <file>        print the syntax tree of a file
//	geel -n               print the version
//	geel -c               print help
//	geel -C <config> ...  read settings from config instead of ~/.geel.yaml
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
	"github.com/metaphox/geel/interp"
	"github.com/metaphox/geel/lexer"
	"github.com/metaphox/geel/parser"
)

const version = "0.1.0"

const helpText = `Isticmaalka: geel [DOORASHOOYIN] [KAYD]

Doorashooyinka:
  -q, --qoraal <QORAAL>       Calaamadaha qoraalka tus
  -k, --kayd <KAYD>           Geedka kaydka tus
  -n, --nooca                 Nooca ii sheeg
  -c, --caawimaad             I caawi
  -C <KAYD>                   Habaynta ka akhri KAYD
`

// longOptions maps the long spellings onto the short options getopt knows.
var longOptions = map[string]string{
	"--qoraal":    "-q",
	"--kayd":      "-k",
	"--nooca":     "-n",
	"--caawimaad": "-c",
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("geel: ")
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// options is the parsed command line.
type options struct {
	help, version bool
	text          *string
	treeFile      *string
	configFile    string
	args          []string
}

func parseArgs(args []string) (options, error) {
	var o options
	args = expandLong(args)
	opts, optind, err := getopt.Getopts(args, "q:k:ncC:")
	if err != nil {
		return o, err
	}
	for _, opt := range opts {
		value := opt.Value
		switch opt.Option {
		case 'q':
			o.text = &value
		case 'k':
			o.treeFile = &value
		case 'n':
			o.version = true
		case 'c':
			o.help = true
		case 'C':
			o.configFile = value
		}
	}
	o.args = args[optind:]
	return o, nil
}

func expandLong(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if short, ok := longOptions[a]; ok && i > 0 {
			a = short
		}
		out[i] = a
	}
	return out
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, helpText)
		return 2
	}

	cfg, err := loadConfig(o.configFile, o.configFile != "")
	if err != nil {
		log.Fatalln(err)
	}
	errOut := newErrorWriter(stderr, cfg.Color)

	acted := false
	if o.help {
		fmt.Fprint(stdout, helpText)
		acted = true
	}
	if o.version {
		fmt.Fprintf(stdout, "Geel %s\n", version)
		acted = true
	}
	if o.text != nil {
		printTokens(stdout, *o.text)
		acted = true
	}
	if o.treeFile != nil {
		if code := printTree(stdout, errOut, *o.treeFile); code != 0 {
			return code
		}
		acted = true
	}

	switch {
	case len(o.args) > 0:
		return runScript(o.args[0], cfg, stdout, errOut)
	case !acted:
		return repl(cfg, stdout, errOut)
	}
	return 0
}

// printTokens writes every token of text, one per line.
func printTokens(w io.Writer, text string) {
	if text == "" {
		fmt.Fprintln(w, "Qoraal macno leh na sii.")
		return
	}
	for _, tok := range lexer.Lex(text) {
		if tok.Type == ast.EOF {
			break
		}
		fmt.Fprintf(w, "%d:%d\t%s\t%q\n", tok.Line, tok.Col, tok.Type, tok.Literal)
	}
}

// printTree writes the syntax tree of the file at path.
func printTree(stdout, stderr io.Writer, path string) int {
	if path == "" {
		fmt.Fprintln(stdout, "Magac la'aan ma dhici karto.")
		return 0
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintln(stdout, "Wax jirin baad noo tilmaamtey.")
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	src := string(data)
	prog, errs := parser.Parse(src)
	fmt.Fprint(stdout, prog.String())
	reportParseErrors(stderr, errs, src)
	if len(errs) > 0 {
		return 1
	}
	return 0
}

// runScript executes a file in script mode: nothing is echoed and lines end
// in "\n".
func runScript(path string, cfg Config, stdout, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, fmt.Errorf("read script: %w", err))
		return 1
	}
	src := string(data)

	prog, perrs := parser.Parse(src)
	reportParseErrors(stderr, perrs, src)

	in := interp.New(
		interp.WithOutput(stdout),
		interp.WithErrors(stderr),
		interp.WithNewline("\n"),
		interp.WithMaxDepth(cfg.MaxDepth),
	)
	if errs := in.Interpret(false, prog.Statements); len(errs) > 0 || len(perrs) > 0 {
		return 1
	}
	return 0
}

func reportParseErrors(w io.Writer, errs []*diag.Error, src string) {
	for _, e := range errs {
		fmt.Fprintln(w, diag.Snippet(e, src))
	}
}

// errorWriter colors everything written through it.
type errorWriter struct {
	w io.Writer
	c *color.Color
}

func newErrorWriter(w io.Writer, enabled bool) *errorWriter {
	c := color.New(color.FgRed)
	if !enabled {
		c.DisableColor()
	}
	return &errorWriter{w: w, c: c}
}

func (e *errorWriter) Write(p []byte) (int, error) {
	if _, err := e.c.Fprint(e.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
