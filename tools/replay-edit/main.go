package main

import (
	"bytes"
	"encoding/hex"
	"os"

	"wrpl-decode/wrpl"
)

func main() {
	f := noerr(os.ReadFile(os.Args[1]))
	res := noerr(wrpl.Decode(f, wrpl.DefaultConfig()))

	buf := &bytes.Buffer{}
	must(wrpl.WriteRecords(buf, res.Records))
	must(os.WriteFile("packets_rebuilt.bin", []byte(hex.Dump(buf.Bytes())), 0644))
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
