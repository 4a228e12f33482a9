package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"

	"wrpl-decode/wrpl"
)

var (
	flagDump  = flag.Bool("dump", false, "spew the decoded header and records")
	flagChat  = flag.Bool("chat", true, "print the chat log")
	flagStats = flag.Bool("stats", false, "print per-tag record counts")
	flagDebug = flag.Bool("debug", false, "debug logging")
)

func main() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	flag.Parse()
	if !*flagDebug {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	for _, loadPath := range flag.Args() {
		replayBytes, err := os.ReadFile(loadPath)
		if err != nil {
			log.Warn().Err(err).Str("path", loadPath).Msg("failed to open")
			continue
		}
		res, err := wrpl.Decode(replayBytes, wrpl.DefaultConfig())
		if err != nil {
			log.Err(err).Str("path", loadPath).Msg("decoding replay")
			continue
		}
		h := res.Header
		log.Info().
			Str("path", loadPath).
			Uint32("version", h.Version).
			Str("level", h.Level).
			Str("battleType", h.BattleType).
			Str("sessionID", fmt.Sprintf("%016x", h.SessionID)).
			Uint32("startTime", h.StartTime).
			Int("records", len(res.Records)).
			Msg("decoded")
		for _, d := range res.Diagnostics {
			log.Warn().Str("stage", d.Stage).Int("offset", d.Offset).Msg(d.Message)
		}

		if *flagChat {
			for _, msg := range res.Chat() {
				fmt.Printf("[%8dms] %s: %s\n", msg.Time, msg.Sender, msg.Message)
			}
		}
		if *flagStats {
			printStats(res)
		}
		if *flagDump {
			spew.Dump(res.Header)
			spew.Dump(res.Records)
		}
	}
}

func printStats(res *wrpl.DecodeResult) {
	kills, awards := 0, 0
	for _, rec := range res.Records {
		if rec.Kind != wrpl.RecordUnknown || rec.Tag != wrpl.PacketTypeMPI {
			continue
		}
		parsed, err := wrpl.ParseMPI(rec)
		if err != nil || parsed == nil {
			continue
		}
		if parsed.Kill != nil {
			kills++
			fmt.Printf("[%8dms] kill by #%d (%s)\n", parsed.Kill.Time, parsed.Kill.KillerID, parsed.Kill.KillerVehicle)
		}
		if parsed.Award != nil {
			awards++
			fmt.Printf("[%8dms] award %q to #%d\n", parsed.Award.Time, parsed.Award.AwardName, parsed.Award.Player)
		}
	}
	fmt.Printf("kills: %d, awards: %d\n", kills, awards)
	for tag, n := range res.UnknownCounts() {
		fmt.Printf("unknown %v: %d\n", tag, n)
	}
}
