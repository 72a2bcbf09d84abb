package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host          string
	adminPassword string
	useMsgpack    bool
)

var rootCmd = &cobra.Command{
	Use:   "bear-cli",
	Short: "A CLI to interact with the bear tracker server",
	Long: `A command-line interface for the bear tracker API: check leaderboards,
manage the roster and record damage for bear events.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&adminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "Admin password for write commands (defaults to $ADMIN_PASSWORD)")
	rootCmd.PersistentFlags().BoolVar(&useMsgpack, "msgpack", false, "Request MessagePack responses")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
