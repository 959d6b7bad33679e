// tracker serves the initiative tracker web UI and API, and manages
// initiatives from the command line.
//
// Usage:
//
//	tracker [serve] [--config=config.json] [--static=./src/dist] [--history]
//	tracker list [--directory=<name>]
//	tracker new [id] --name=<name> [--type=<type>]
//	tracker note <id> <text...>
//	tracker search <query>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracker/internal/app"
	"tracker/internal/config"
	"tracker/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var settings = config.Load()

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Track initiatives stored as folders of markdown files",
	Long: "tracker keeps each initiative as a directory of README.md, notes.md,\n" +
		"comms.md and links.md, and serves a local web UI and JSON API over them.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.Init(logging.ParseLevel(settings.LogLevel), settings.LogFormat, cmd.ErrOrStderr())
	},
	RunE: runServe,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&settings.ConfigPath, "config", settings.ConfigPath, "Path to config.json")
	f.BoolVar(&settings.History, "history", settings.History, "Record every change in a git history per directory")
	f.StringVar(&settings.Author, "author", settings.Author, "Commit author for recorded history")
	f.StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "Log level: debug, info, warn, error")
	f.StringVar(&settings.LogFormat, "log-format", settings.LogFormat, "Log format: text or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(commCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.Version = version
}

// openService builds the service over the config file named by settings.
func openService() *app.Service {
	store := config.Open(settings.ConfigPath)
	return app.NewService(store, app.Options{History: settings.History, Author: settings.Author})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
