package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/franksops/shuttle/deploy"
	"github.com/franksops/shuttle/engine"
	"github.com/franksops/shuttle/event"
	"github.com/franksops/shuttle/pipeline"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute a single scan/copy/deploy cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			history, err := openHistory(cfgPath)
			if err != nil {
				return err
			}
			defer history.Close()

			stream := event.NewStream(0)
			orch := pipeline.New(cfg, history, stream, deploy.SSHDialer{Timeout: 10 * time.Second})
			control := engine.NewRunControl()

			// First interrupt cancels cooperatively, a second one exits.
			sigChan := make(chan os.Signal, 2)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				control.Cancel()
				<-sigChan
				os.Exit(1)
			}()

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				printEvents(stream.Events())
			}()

			result, err := orch.RunCycle(context.Background(), control)
			stream.Close()
			wg.Wait()
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
}

func printResult(result *pipeline.CycleResult) {
	fmt.Printf("scanned %d source(s): %d found, %d copied, %d skipped, %d error(s)\n",
		result.ScannedPaths, len(result.FoundFolders), len(result.CopiedFolders),
		len(result.SkippedFolders), len(result.Errors))
	if result.Cancelled {
		fmt.Println("cycle was cancelled; the counts above are partial")
	}
}

// printEvents renders the telemetry stream as plain lines. Progress ticks
// redraw in place; the next log line moves to a fresh row first.
func printEvents(events <-chan event.Event) {
	inProgress := false
	for e := range events {
		switch e := e.(type) {
		case event.LogEvent:
			if inProgress {
				fmt.Println()
				inProgress = false
			}
			fmt.Printf("[%s] %s\n", e.Level, e.Message)
		case event.ProgressEvent:
			fmt.Printf("\r%-100s", progressLine(e))
			inProgress = true
		}
	}
	if inProgress {
		fmt.Println()
	}
}

func progressLine(p event.ProgressEvent) string {
	return fmt.Sprintf("%s: %.1f%% (%d/%d bytes, %.0f B/s, ETA %.0fs)",
		p.Label, p.Percentage, p.CopiedBytes, p.TotalBytes, p.Speed, p.EtaSeconds)
}
