package commands

import (
	"fmt"
	"os"

	"github.com/battlesnakeio/gridsnake/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "gridsnake",
	Short:   "gridsnake plays, records and replays games of snake",
	Version: version.Version,
	PersistentPreRun: func(*cobra.Command, []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

var (
	apiAddr string
	verbose bool
)

// Execute runs the root command
func Execute() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api-addr", "http://localhost:3005", "address of the api server")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	addStoreFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints the gridsnake version",
	Run: func(*cobra.Command, []string) {
		fmt.Println(version.Version)
	},
}
