package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pelletier/go-ini"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ConvertFn func(r io.Reader, w io.Writer) error

type Program struct {
	Name  string
	Usage string
	Fn    ConvertFn
	// Inplace allows the program to take multiple files as argument and
	// modify them in place. It also adds a --diff flag that prints the
	// changes instead of writing them.
	Inplace bool
	// Flags declares the program's own flags.
	Flags func(fs *pflag.FlagSet)
}

func (p *Program) Execute() {
	os.Exit(p.processMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func (p *Program) processMain(args []string, input io.Reader, output, stderr io.Writer) int {
	cmd := p.command(input, output)
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err != nil {
		printError(stderr, err)
		return -1
	}
	return 0
}

func (p *Program) command(input io.Reader, output io.Writer) *cobra.Command {
	var diff bool

	cmd := &cobra.Command{
		Use:           p.Name + " [files]",
		Long:          p.Usage,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if diff {
				return p.runDiff(args, input, output)
			}
			return p.run(args, input, output)
		},
	}
	if !p.Inplace {
		cmd.Args = cobra.MaximumNArgs(1)
	} else {
		cmd.Flags().BoolVar(&diff, "diff", false, "print the changes instead of applying them")
	}
	if p.Flags != nil {
		p.Flags(cmd.Flags())
	}
	return cmd
}

func (p *Program) run(files []string, input io.Reader, output io.Writer) error {
	if len(files) > 0 {
		if p.Inplace {
			return p.runAllFilesInPlace(files)
		}
		f, err := os.Open(files[0])
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}
	return p.Fn(input, output)
}

func (p *Program) runAllFilesInPlace(files []string) error {
	for _, path := range files {
		err := p.runFileInPlace(path)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) runFileInPlace(path string) error {
	in, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out := new(bytes.Buffer)

	err = p.Fn(bytes.NewReader(in), out)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return os.WriteFile(path, out.Bytes(), 0o600)
}

// runDiff converts stdin or each file, and prints a line diff between the
// original and converted text.
func (p *Program) runDiff(files []string, input io.Reader, output io.Writer) error {
	if len(files) == 0 {
		in, err := io.ReadAll(input)
		if err != nil {
			return err
		}
		return p.diffOne("", in, output)
	}
	for _, path := range files {
		in, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := p.diffOne(path, in, output); err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) diffOne(path string, in []byte, output io.Writer) error {
	out := new(bytes.Buffer)
	err := p.Fn(bytes.NewReader(in), out)
	if err != nil {
		if path != "" {
			return fmt.Errorf("%s: %w", path, err)
		}
		return err
	}
	if bytes.Equal(in, out.Bytes()) {
		return nil
	}
	if path != "" {
		fmt.Fprintf(output, "--- %s\n+++ %s\n", path, path)
	}
	writeDiff(output, string(in), out.String())
	return nil
}

func writeDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	removed := newColor(w, color.FgRed)
	added := newColor(w, color.FgGreen)

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				removed.Fprintln(w, "-"+line)
			case diffmatchpatch.DiffInsert:
				added.Fprintln(w, "+"+line)
			default:
				fmt.Fprintln(w, " "+line)
			}
		}
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func printError(w io.Writer, err error) {
	c := newColor(w, color.FgRed)

	var derr *ini.DecodeError
	var serr *ini.StrictMissingError
	switch {
	case errors.As(err, &serr):
		c.Fprintln(w, err.Error())
		fmt.Fprintln(w, serr.String())
	case errors.As(err, &derr):
		c.Fprintln(w, err.Error())
		if row, _ := derr.Position(); row > 0 {
			fmt.Fprintln(w, derr.String())
		}
	default:
		c.Fprintln(w, err.Error())
	}
}

// newColor returns a color that is only applied when w is a terminal.
func newColor(w io.Writer, attr color.Attribute) *color.Color {
	c := color.New(attr)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
