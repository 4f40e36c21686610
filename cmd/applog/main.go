// Command applog inspects the environment-derived configuration and
// pushes test records through the configured log handlers.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
