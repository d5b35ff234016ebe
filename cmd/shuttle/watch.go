package main

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/franksops/shuttle/deploy"
	"github.com/franksops/shuttle/engine"
	"github.com/franksops/shuttle/event"
	"github.com/franksops/shuttle/pipeline"
	"github.com/franksops/shuttle/store"
	"github.com/franksops/shuttle/ui"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run cycles on the configured interval with a live dashboard",
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

			program := tea.NewProgram(ui.NewModel(control), tea.WithAltScreen())

			// Forward telemetry into the TUI.
			go func() {
				for e := range stream.Events() {
					program.Send(ui.EventMsg{Event: e})
				}
			}()

			interval := time.Duration(cfg.IntervalMinutes) * time.Minute
			if interval <= 0 {
				interval = 10 * time.Minute
			}

			// Mirror pause/resume flag flips into the audit log. The flags
			// are level-triggered, so transitions are observed by polling.
			auditDone := make(chan struct{})
			go func() {
				paused := false
				ticker := time.NewTicker(250 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-auditDone:
						return
					case <-ticker.C:
					}
					if p := control.Paused(); p != paused {
						paused = p
						if paused {
							orch.AuditSystemEvent(store.ActionPause, "paused by operator")
						} else {
							orch.AuditSystemEvent(store.ActionResume, "resumed by operator")
						}
					}
				}
			}()

			// Cycle loop. The TUI owns cancel/pause; cancellation ends the
			// running cycle and the loop.
			go func() {
				defer program.Send(ui.CycleDoneMsg{})
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					result, err := orch.RunCycle(context.Background(), control)
					switch {
					case errors.Is(err, pipeline.ErrBusy):
						// Never happens from this single loop; guard anyway.
					case err != nil:
						stream.Log(event.LevelError, "cycle failed: %v", err)
					case result.Cancelled:
						orch.AuditSystemEvent(store.ActionCancel, "watch cancelled by operator")
						return
					}
					stream.Log(event.LevelInfo, "next cycle in %s", interval)
					<-ticker.C
					if control.Cancelled() {
						return
					}
				}
			}()

			_, err = program.Run()
			close(auditDone)
			stream.Close()
			return err
		},
	}
}
