// Package launch opens locations with the desktop's default handler and
// tells the user when that fails.
package launch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/places/command"
	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/location"
)

// Launcher opens locations with the default application.
type Launcher interface {
	// Open launches loc. A location that must be mounted first yields an
	// error with code errors.ErrCodeNotMounted.
	Open(ctx context.Context, loc location.Location, timestamp uint32) error
	// Mount mounts the volume enclosing loc.
	Mount(ctx context.Context, loc location.Location) error
}

// Notifier reports user-visible failures.
type Notifier interface {
	NotifyError(title, message string)
}

// GioLauncher opens locations with `gio open`, falling back to xdg-open
// when gio is not installed.
type GioLauncher struct {
	runner command.Runner
	logger *logrus.Entry
}

// NewGioLauncher returns a launcher running helpers through runner.
func NewGioLauncher(runner command.Runner) *GioLauncher {
	if runner == nil {
		runner = command.NewRunner()
	}
	return &GioLauncher{runner: runner, logger: logging.NewLogger("launch")}
}

// StartupID builds a DESKTOP_STARTUP_ID so the window manager can attribute
// the new window to the user action that caused it.
func StartupID(timestamp uint32) string {
	return fmt.Sprintf("places-%d_TIME%d", os.Getpid(), timestamp)
}

func (l *GioLauncher) Open(ctx context.Context, loc location.Location, timestamp uint32) error {
	uri := loc.URI()
	if err := command.ValidateURIArg(uri); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot open location")
	}

	name, args := "gio", []string{"open", uri}
	if !l.runner.Available("gio") {
		name, args = "xdg-open", []string{uri}
	}
	env := []string{"DESKTOP_STARTUP_ID=" + StartupID(timestamp)}

	l.logger.WithField("uri", uri).Debugf("Opening with %s", name)
	res, err := l.runner.Run(ctx, name, args, env)
	if err == nil {
		return nil
	}
	stderr := strings.TrimSpace(string(res.Stderr))
	if isNotMounted(stderr) {
		return errors.NotMounted(uri)
	}
	if stderr != "" {
		err = fmt.Errorf("%s", stderr)
	}
	return errors.LaunchFailed(uri, err)
}

func (l *GioLauncher) Mount(ctx context.Context, loc location.Location) error {
	uri := loc.URI()
	if err := command.ValidateURIArg(uri); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot mount location")
	}
	l.logger.WithField("uri", uri).Info("Mounting enclosing volume")
	res, err := l.runner.Run(ctx, "gio", []string{"mount", uri}, nil)
	if err != nil {
		if stderr := strings.TrimSpace(string(res.Stderr)); stderr != "" {
			err = fmt.Errorf("%s", stderr)
		}
		return errors.MountFailed(uri, err)
	}
	return nil
}

func isNotMounted(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "not mounted")
}

// DesktopNotifier logs failures and shows them through notify-send when it
// is available.
type DesktopNotifier struct {
	runner command.Runner
	logger *logrus.Entry
}

// NewDesktopNotifier returns a notifier running notify-send through runner.
func NewDesktopNotifier(runner command.Runner) *DesktopNotifier {
	if runner == nil {
		runner = command.NewRunner()
	}
	return &DesktopNotifier{runner: runner, logger: logging.NewLogger("notify")}
}

func (n *DesktopNotifier) NotifyError(title, message string) {
	n.logger.WithField("detail", message).Error(title)
	if !n.runner.Available("notify-send") {
		return
	}
	args := []string{"--app-name=places", "--icon=dialog-error", "--", title, message}
	if _, err := n.runner.Run(context.Background(), "notify-send", args, nil); err != nil {
		n.logger.WithError(err).Debug("notify-send failed")
	}
}
