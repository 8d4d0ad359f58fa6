// Package inil is a linter program for INI.
//
// It rewrites each line of a document in canonical form: entries as
// "key=value", comments starting with ';', and a single kind of line
// terminator. The order of lines, comments and blank lines is preserved.
//
// # Usage
//
// Reading from stdin, writing to stdout:
//
//	cat file.ini | inil
//
// Reading and updating a list of files in place:
//
//	inil a.ini b.ini c.ini
//
// Previewing the changes:
//
//	inil --diff a.ini
//
// # Installation
//
// Using Go:
//
//	go install github.com/pelletier/go-ini/cmd/inil@latest
package main

import (
	"errors"
	"io"

	"github.com/pelletier/go-ini"
	"github.com/pelletier/go-ini/internal/cli"
	"github.com/spf13/pflag"
)

const usage = `inil can be used in two ways:

Reading from stdin, writing to stdout:
  cat file.ini | inil > file.ini

Reading and updating a list of files in place:
  inil a.ini b.ini c.ini

When given a list of files, inil will modify all files in place without asking,
unless --diff is given.
`

var useLF = false

func main() {
	p := cli.Program{
		Name:    "inil",
		Usage:   usage,
		Fn:      convert,
		Inplace: true,
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&useLF, "lf", useLF, "terminate lines with LF instead of CRLF")
		},
	}
	p.Execute()
}

func convert(r io.Reader, w io.Writer) error {
	le := ini.CRLF
	if useLF {
		le = ini.LF
	}

	p := ini.NewParser(r)
	out := ini.NewWriter(w, le)
	for {
		item, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := out.Write(item); err != nil {
			return err
		}
	}
}
