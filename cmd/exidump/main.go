// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command exidump prints the events of EXI
// streams, one line per event.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/SnellerInc/exi/body"
	"github.com/SnellerInc/exi/stream"
)

var (
	dashconfig string
	dashz      string
	dashv      bool
)

func init() {
	flag.StringVar(&dashconfig, "config", "", "YAML file of coding options")
	flag.StringVar(&dashz, "z", "auto", "compression envelope (auto, zstd, zstd-nocrc, s2, none)")
	flag.BoolVar(&dashv, "v", false, "log self-contained regions to stderr")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()
	opts := body.DefaultOptions()
	if dashconfig != "" {
		var err error
		opts, err = body.LoadOptions(dashconfig)
		if err != nil {
			exitf("%s", err)
		}
	}
	if dashv {
		opts.Logger = log.New(os.Stderr, "", log.Lshortfile)
	}
	o := bufio.NewWriter(os.Stdout)
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		var buf []byte
		var err error
		if arg == "-" {
			buf, err = io.ReadAll(os.Stdin)
		} else {
			buf, err = os.ReadFile(arg)
		}
		if err != nil {
			exitf("can't read %q: %s", arg, err)
		}
		s, err := stream.Open(buf, dashz, &opts)
		if err != nil {
			exitf("input %s: %s", arg, err)
		}
		if err := body.Dump(s, o); err != nil {
			o.Flush()
			exitf("input %s: %s", arg, err)
		}
	}
	if err := o.Flush(); err != nil {
		exitf("%s", err)
	}
}
