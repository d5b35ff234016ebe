package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/franksops/shuttle/config"
	"github.com/franksops/shuttle/store"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "shuttle",
		Short:         "Unattended promotion of versioned build artifacts",
		Long:          "shuttle discovers versioned build artifacts on network shares, copies them locally, and deploys them to remote targets over SSH/SFTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: per-user config dir)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newDeployCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newHistoryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file path and loads the snapshot. A
// missing file is created with defaults. Failure here is fatal: no cycle
// may run without configuration.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// openHistory opens the audit log next to the config file.
func openHistory(cfgPath string) (*store.BoltHistory, error) {
	return store.NewBoltHistory(filepath.Join(filepath.Dir(cfgPath), "history.db"))
}
