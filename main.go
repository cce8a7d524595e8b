package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "pingparcel",
		Short:        "PingParcel parcel delivery API",
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, args []string) error { return runServe(cmd.Context()) },
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	indexesCmd := &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes used by the API and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnsureIndexes(cmd.Context())
		},
	}

	root.AddCommand(serveCmd, indexesCmd)

	if err := root.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
