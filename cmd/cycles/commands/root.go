package commands

import (
	"fmt"
	"os"

	"github.com/lightcycles/engine/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "cycles",
	Short:   "cycles runs light cycle matches",
	Version: version.Version,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		return nil
	},
}

var (
	logLevel = "info"
	apiAddr  = ""
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level, one of: [debug, info, warn, error]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", logFile, "file that receives the logs while the terminal ui is up, dropped when empty")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", storeKind, "match store, as one of: [memory, file, redis, postgres]")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", storeDir, "directory of the file store, defaults to ~/.cycles/matches")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store-url", storeURL, "connection url of the redis or postgres store")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api-addr", apiAddr, "address of a cycles api server to use instead of the store, e.g. http://localhost:3005")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serverCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
