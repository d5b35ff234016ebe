package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the audit history",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			history, err := openHistory(cfgPath)
			if err != nil {
				return err
			}
			defer history.Close()

			if clear {
				if err := history.Clear(); err != nil {
					return err
				}
				fmt.Println("history cleared")
				return nil
			}

			entries, err := history.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no history entries")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-7s %s", e.Timestamp.Format(time.RFC3339), e.ActionType, e.Description)
				if e.FolderName != "" {
					line += fmt.Sprintf(" [%s: %d files, %d bytes]", e.FolderName, e.CopiedFileCount, e.TotalSize)
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "delete all history entries")
	return cmd
}
