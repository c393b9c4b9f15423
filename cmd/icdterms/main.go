package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		cmdExtract(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: icdterms <command>

Commands:
  extract   Convert an ICD-10-CM order file into a (code, term, type) CSV
  import    Download catalog releases and build term tables
  serve     Start the lookup server (HTTP + MCP over QUIC)
`)
}
