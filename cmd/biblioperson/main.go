// Command biblioperson segments documents into classified NDJSON records.
//
//	biblioperson segment poemas.pdf --profile auto --output poemas.ndjson
//	biblioperson detect *.txt
//	biblioperson profiles
//
// Defaults for the profile directory, dedup database and language are read
// from BIBLIOPERSON_PROFILES_DIR, BIBLIOPERSON_DEDUP_DB and
// BIBLIOPERSON_LANGUAGE, optionally loaded from a .env file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
