// README: Entry point; `serve` runs the HTTP API, `scan` and `warroom` run one pipeline from the terminal.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "roamgenie",
		Short:         "RoamGenie travel assistant backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (defaults to ./roamgenie.yaml when present)")

	root.AddCommand(
		newServeCmd(&configPath),
		newScanCmd(&configPath),
		newWarRoomCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		log.Printf("roamgenie: %v", err)
		os.Exit(1)
	}
}
