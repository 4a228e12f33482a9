// find-offset lists body offset candidates for a replay and reports
// what each one decompresses and parses into. Purely for debugging.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wrpl-decode/wrpl"
)

var (
	flagWindow = flag.Int("window", 1<<20, "scan window past the header")
	flagMax    = flag.Int("max", 32, "max candidates to probe")
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <replay.wrpl>\n", os.Args[0])
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("reading replay")
	}
	cfg := wrpl.DefaultConfig()
	cfg.MaxScanWindow = *flagWindow

	header, _, err := wrpl.ParseHeader(data, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing header")
	}
	log.Info().Uint32("rezOffset", header.RezOffset).Uint32("msetSize", header.MsetSize).Msg("declared offsets")

	scanner := wrpl.NewOffsetScanner(data, header, cfg)
	found := 0
	for found < *flagMax {
		off, ok := scanner.Next()
		if !ok {
			break
		}
		found++
		body, _, err := wrpl.DecompressBody(data, off)
		if err != nil {
			fmt.Printf("%#08x  not a stream: %v\n", off, err)
			continue
		}
		parser := wrpl.NewRecordParser(body, header.Version)
		records, chat := 0, 0
		for {
			rec, ok := parser.Next()
			if !ok {
				break
			}
			records++
			if rec.Kind == wrpl.RecordChat {
				chat++
			}
		}
		fmt.Printf("%#08x  %d decompressed bytes (truncated=%v), %d records, %d chat\n",
			off, len(body.Data), body.Truncated, records, chat)
	}
	if found == 0 {
		log.Warn().Msg("no zlib signatures inside the scan window, is this a complete replay?")
	}
}
