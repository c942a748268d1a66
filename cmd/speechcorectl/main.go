// Command speechcorectl is a maintainer-facing smoke-test CLI: it drives
// a RecorderCore against the reference FFMPEGRecorder and the streaming
// transcription plugin against a live endpoint, and lets a maintainer
// jq-query a captured snapshot for support debugging. It is not the
// mobile button UI the SDK is embedded into.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "speechcorectl",
	Short: "Maintainer CLI for the speechcore capture runtime",
}

func init() {
	rootCmd.AddCommand(listenCmd(), inspectCmd())
}
