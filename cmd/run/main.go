package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hatchet-dev/hatchet/pkg/cmdutils"
)

func main() {
	ctx, cancel := cmdutils.NewInterruptContext()
	err := newRootCommand().ExecuteContext(ctx)
	cancel()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
