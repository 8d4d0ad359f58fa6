// Package iniconv is a program that converts INI to JSON, YAML or TOML.
//
// # Usage
//
// Reading from stdin:
//
//	cat file.ini | iniconv > file.json
//
// Reading from a file:
//
//	iniconv --to yaml file.ini > file.yaml
//
// # Installation
//
// Using Go:
//
//	go install github.com/pelletier/go-ini/cmd/iniconv@latest
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-ini"
	"github.com/pelletier/go-ini/internal/cli"
	"github.com/spf13/pflag"
)

const usage = `iniconv can be used in two ways:
Reading from stdin:
  cat file.ini | iniconv > file.json

Reading from a file:
  iniconv file.ini > file.json

The output format is selected with --to: json (default), yaml or toml.
Entries become strings, sections become nested objects.
`

var format = "json"

func main() {
	p := cli.Program{
		Name:  "iniconv",
		Usage: usage,
		Fn:    convert,
		Flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&format, "to", format, "output format: json, yaml or toml")
		},
	}
	p.Execute()
}

func convert(r io.Reader, w io.Writer) error {
	var v interface{}

	err := ini.NewDecoder(r).Decode(&v)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "toml":
		return toml.NewEncoder(w).Encode(v)
	}
	return fmt.Errorf("unknown output format %q", format)
}
