// chat-export decodes replays and appends their chat logs to an SQLite
// database for later querying (needs cgo for the sqlite driver).
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wrpl-decode/wrpl"
)

var flagDB = flag.String("db", "chat.sqlite", "database path")

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	flag.Parse()

	db := noerr(sql.Open("sqlite3", *flagDB))
	defer db.Close()
	must(initSchema(db))

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
		n, err := exportChat(db, res)
		if err != nil {
			log.Err(err).Str("path", loadPath).Msg("exporting chat")
			continue
		}
		log.Info().Str("path", loadPath).Int("messages", n).Msg("exported")
	}
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS chat (
		session_id TEXT NOT NULL,
		level TEXT NOT NULL,
		time_ms INTEGER NOT NULL,
		sender TEXT NOT NULL,
		message TEXT NOT NULL,
		channel_type INTEGER NOT NULL,
		is_enemy INTEGER NOT NULL
	)`)
	return err
}

func exportChat(db *sql.DB, res *wrpl.DecodeResult) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT INTO chat
		(session_id, level, time_ms, sender, message, channel_type, is_enemy)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	session := fmt.Sprintf("%016x", res.Header.SessionID)
	n := 0
	for _, msg := range res.Chat() {
		_, err = stmt.Exec(session, res.Header.Level, msg.Time, msg.Sender, msg.Message, msg.ChannelType, msg.IsEnemy)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, tx.Commit()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func noerr[T any](ret T, err error) T {
	must(err)
	return ret
}
