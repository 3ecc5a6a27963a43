// Command jsonpp parses a JSON file and pretty-prints it to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/jquent/streamjson"
	"github.com/jquent/streamjson/arena"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: jsonpp <file>")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		errorf("jsonpp: %v", err)
		os.Exit(1)
	}
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res := arena.NewMonotonic(0)
	defer res.Release()
	v, err := streamjson.ParseReader(f, res)
	if err != nil {
		return err
	}
	_, err = streamjson.WriteIndent(os.Stdout, v)
	return err
}

func errorf(format string, args ...interface{}) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
