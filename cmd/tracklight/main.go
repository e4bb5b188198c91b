// Command tracklight ships newline-delimited JSON track events to a
// Tracklight collector through the SDK's batching pipeline.
//
// Each input line is one event:
//
//	{"event": "Signed Up", "userId": "u-1", "properties": {"plan": "pro"}}
//
// Usage:
//
//	tracklight send --write-key KEY [--host URL] [events.ndjson]
//	tracklight send --config tracklight.yaml < events.ndjson
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tracklight",
		Short:         "Ship analytics events to a Tracklight collector",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSendCmd())
	root.AddCommand(newVersionCmd())
	return root
}
