// Package jsonini is a program that converts JSON to INI.
//
// The JSON document must be an object. Its string and number members become
// top-level entries, and its object members become sections.
//
// # Usage
//
// Reading from stdin:
//
//	cat file.json | jsonini > file.ini
//
// Reading from a file:
//
//	jsonini file.json > file.ini
//
// # Installation
//
// Using Go:
//
//	go install github.com/pelletier/go-ini/cmd/jsonini@latest
package main

import (
	"encoding/json"
	"io"

	"github.com/pelletier/go-ini"
	"github.com/pelletier/go-ini/internal/cli"
	"github.com/spf13/pflag"
)

const usage = `jsonini can be used in two ways:
Reading from stdin:
  cat file.json | jsonini > file.ini

Reading from a file:
  jsonini file.json > file.ini
`

var (
	useNumber = false
	useLF     = false
)

func main() {
	p := cli.Program{
		Name:  "jsonini",
		Usage: usage,
		Fn:    convert,
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&useNumber, "use-number", useNumber, "keep numbers as written in the JSON document instead of reformatting them as float64")
			fs.BoolVar(&useLF, "lf", useLF, "terminate lines with LF instead of CRLF")
		},
	}
	p.Execute()
}

func convert(r io.Reader, w io.Writer) error {
	var v interface{}

	d := json.NewDecoder(r)
	if useNumber {
		d.UseNumber()
	}

	err := d.Decode(&v)
	if err != nil {
		return err
	}

	e := ini.NewEncoder(w)
	if useLF {
		e.SetLineEnding(ini.LF)
	}
	return e.Encode(v)
}
