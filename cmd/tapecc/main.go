package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/tapeforge/tapecc/codegen"
	"github.com/tapeforge/tapecc/internal/config"
	"github.com/tapeforge/tapecc/parser"
)

type args struct {
	sourcePath *string
	outputPath *string
	sanitize   *bool
	tapeLen    *int
}

func readArgs() *args {
	a := &args{
		sourcePath: flag.String("source", "", "Path to the program source. Reads standard input if empty"),
		outputPath: flag.String("output", "/dev/stdout", "Path to write the generated C module"),
		sanitize:   flag.Bool("sanitize", false, "Instrument every cell access and lock operation with race-detector hooks"),
		tapeLen:    flag.Int("tape-len", 30000, "Number of cells on the tape"),
	}
	flag.Parse()
	return a
}

func readSource(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func main() {
	a := readArgs()

	src, err := readSource(*a.sourcePath)
	if err != nil {
		log.Fatalf("can't read source: %s", err.Error())
	}

	body, err := parser.New(string(src)).Parse()
	if err != nil {
		log.Fatal(err)
	}

	cfg := config.New()
	cfg.SetBool("codegen.sanitize", *a.sanitize)
	cfg.SetInt("codegen.tape_len", *a.tapeLen)

	out, err := codegen.Generate(body, cfg)
	if err != nil {
		log.Fatalf("can't emit code: %s", err.Error())
	}

	if err := os.WriteFile(*a.outputPath, []byte(out), 0644); err != nil {
		log.Fatalf("can't write output: %s", err.Error())
	}
}
