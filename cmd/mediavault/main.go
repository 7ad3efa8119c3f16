package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Cobra already silences usage; a cancelled context means the
		// user interrupted us and needs no error line.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "mediavault:", err)
		}
		os.Exit(1)
	}
}
