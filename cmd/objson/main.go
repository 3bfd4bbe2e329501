// objson - relaxed JSON object-graph CLI tool
//
// Usage:
//
//	objson check [--strict] [file]   Parse a document and report errors
//	objson fmt [file]                Reformat a relaxed document as clean JSON
//	objson to-json [file]            Convert a relaxed document to strict JSON
//	objson version                   Print version info
//
// Relaxed syntax (comments, unquoted keys, newline separators, triple
// quoted strings) is accepted by default; --strict narrows check to
// strict JSON.
//
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/calyptra/objson/objson"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	strict := false
	fileArg := ""
	for _, arg := range os.Args[2:] {
		switch arg {
		case "--strict":
			strict = true
		default:
			fileArg = arg
		}
	}

	var input io.Reader = os.Stdin
	name := "stdin"
	if fileArg != "" && fileArg != "-" {
		f, err := os.Open(fileArg)
		if err != nil {
			logrus.Fatalf("open file: %v", err)
		}
		defer f.Close()
		input = f
		name = fileArg
	}

	reg := objson.NewRegistry()
	s := objson.New(reg)
	if strict {
		s.SetSyntax(objson.Strict)
	} else {
		s.SetSyntax(objson.Relaxed)
	}

	switch cmd {
	case "check":
		var v any
		if err := s.ReadNamed(&v, input, name, 1); err != nil {
			logrus.Fatalf("check: %v", err)
		}
		fmt.Println("ok")
	case "fmt":
		var v any
		if err := s.ReadNamed(&v, input, name, 1); err != nil {
			logrus.Fatalf("fmt: %v", err)
		}
		if err := s.Write(v, os.Stdout); err != nil {
			logrus.Fatalf("fmt: %v", err)
		}
	case "to-json":
		out, err := s.ToJSON(input)
		if err != nil {
			logrus.Fatalf("to-json: %v", err)
		}
		os.Stdout.Write(out)
		fmt.Println()
	case "version":
		fmt.Printf("objson %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "objson: unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: objson <command> [file]

commands:
  check [--strict]  parse a document and report errors
  fmt               reformat a relaxed document as clean JSON
  to-json           convert a relaxed document to strict JSON
  version           print version info

reads from stdin when no file is given`)
}
