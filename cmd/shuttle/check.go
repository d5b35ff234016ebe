package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/franksops/shuttle/deploy"
)

func newCheckCmd() *cobra.Command {
	var targetID string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Test connectivity and authentication against deployment targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			dialer := deploy.SSHDialer{Timeout: 10 * time.Second}
			failures := 0
			for _, target := range cfg.Deploy.Targets {
				if targetID != "" && target.ID != targetID {
					continue
				}
				if targetID == "" && !target.Enabled {
					continue
				}
				if err := deploy.CheckConnection(dialer, target); err != nil {
					failures++
					fmt.Printf("FAIL %s (%s): %v\n", target.Name, target.Addr(), err)
					continue
				}
				fmt.Printf("OK   %s (%s)\n", target.Name, target.Addr())
			}
			if failures > 0 {
				return fmt.Errorf("%d target(s) unreachable", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetID, "target", "", "check only this target id")
	return cmd
}
