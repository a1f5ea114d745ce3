package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/grovetools/places/cli"
	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/internal/daemon/engine"
	"github.com/grovetools/places/internal/daemon/pidfile"
	"github.com/grovetools/places/internal/daemon/server"
	"github.com/grovetools/places/internal/metrics"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/daemon"
	"github.com/grovetools/places/pkg/paths"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run or control the places daemon",
		Long:  "The daemon keeps the place lists current and serves them over a unix socket.",
	}
	cmd.AddCommand(newDaemonStartCmd(), newDaemonStopCmd(), newDaemonStatusCmd())
	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger("placesd")
			pidPath := paths.PidFilePath()
			sockPath := loaded.SocketPath()

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("failed to create places directories: %w", err)
			}
			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			eng, err := engine.New(ctx, engine.Options{
				Config:      loaded.Config,
				ConfigFiles: loaded.Sources,
				Metrics:     m,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			srv := server.New(eng, m, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return eng.Run(gctx) })
			g.Go(func() error { return srv.ListenAndServe(sockPath) })
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Received stop signal")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			logger.WithField("pid", os.Getpid()).Info("Starting daemon")
			err = g.Wait()
			_ = os.Remove(sockPath)
			return err
		},
	}
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := pidfile.Terminate(paths.PidFilePath())
			if err != nil {
				return err
			}
			console := logging.NewConsole(cmd.OutOrStdout())
			if pid == 0 {
				console.Warn("Daemon is not running")
				return nil
			}
			console.Success(fmt.Sprintf("Sent SIGTERM to process %d", pid))
			return nil
		},
	}
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			sockPath := loaded.SocketPath()
			client := daemon.NewRemoteClient(sockPath)
			defer client.Close()

			status, err := client.Status(cmd.Context())
			if err != nil {
				if _, pid, _ := pidfile.IsRunning(paths.PidFilePath()); pid != 0 {
					return errors.Wrap(err, errors.ErrCodeDaemonNotRunning,
						fmt.Sprintf("daemon process %d is not answering", pid))
				}
				return errors.DaemonNotRunning(sockPath)
			}

			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			console := logging.NewConsole(cmd.OutOrStdout())
			console.Success(fmt.Sprintf("Running (PID: %d, version %s)", status.PID, status.Version))
			console.Path("Socket", sockPath)
			console.Field("Since", status.StartedAt.Format(time.RFC3339))
			console.Path("Bookmarks", status.BookmarksFile)
			console.Field("Streams", status.StreamClients)
			return nil
		},
	}
}
