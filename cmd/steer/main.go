// Command steer runs context-steering scenes headless or in a debug viewer.
package main

import (
	"fmt"
	"os"

	"github.com/milk9111/steering/internal/observability"
	"go.uber.org/zap"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		observability.GetLogger().Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
	}
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}
