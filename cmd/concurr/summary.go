package main

import (
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printRunSummary writes a thousands-separated completion summary to w,
// used only when the client is running verbose.
func printRunSummary(w io.Writer, total uint64, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "concurr: %d inputs completed in %s\n", total, elapsed.Round(time.Millisecond))
}
