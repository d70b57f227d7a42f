// simulate drives the next-article widget from the terminal.
// Sessions are kept in a local bbolt file so a "visit" survives between runs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
