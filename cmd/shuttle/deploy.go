package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/franksops/shuttle/deploy"
	"github.com/franksops/shuttle/engine"
	"github.com/franksops/shuttle/event"
	"github.com/franksops/shuttle/store"
)

func newDeployCmd() *cobra.Command {
	var (
		targetID   string
		localPath  string
		remotePath string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Manually deploy a local directory to one target",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			target, ok := cfg.TargetByID(targetID)
			if !ok {
				return fmt.Errorf("no target with id %q", targetID)
			}
			if remotePath == "" {
				remotePath = target.RemotePath + "/"
			}

			history, err := openHistory(cfgPath)
			if err != nil {
				return err
			}
			defer history.Close()

			stream := event.NewStream(0)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				printEvents(stream.Events())
			}()

			fanout := deploy.NewFanout(deploy.SSHDialer{Timeout: 10 * time.Second}, stream)
			res := fanout.DeployManual(context.Background(), target, localPath, remotePath, cfg.Deploy.PostCommands, engine.NewRunControl())
			stream.Close()
			wg.Wait()

			entry := store.Entry{
				ActionType:      store.ActionDeploy,
				FolderName:      localPath,
				SourcePath:      localPath,
				TargetPath:      res.Target,
				CopiedFileCount: res.UploadedFiles,
				TotalSize:       res.UploadedBytes,
			}
			if res.Err != nil {
				entry.Description = fmt.Sprintf("manual deployment failed: %v", res.Err)
			} else {
				entry.Description = fmt.Sprintf("manual deployment in %s", res.Elapsed.Round(time.Millisecond))
			}
			if err := history.Append(entry); err != nil {
				fmt.Printf("warning: could not record history entry: %v\n", err)
			}

			if res.Err != nil {
				return res.Err
			}
			fmt.Printf("deployed %d files (%d bytes) to %s in %s\n", res.UploadedFiles, res.UploadedBytes, target.Name, res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&targetID, "target", "", "target id from the config file")
	cmd.Flags().StringVar(&localPath, "path", "", "local directory to upload")
	cmd.Flags().StringVar(&remotePath, "remote", "", "remote destination (default: target's base path)")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
