package daemon

import (
	"net"
	"os"
	"time"

	"github.com/grovetools/places/config"
)

// New returns a Client that will use the daemon if its socket answers,
// otherwise falls back to a LocalClient built from cfg.
func New(cfg *config.Config) Client {
	if cfg == nil {
		cfg = config.Default()
	}
	socketPath := cfg.SocketPath()
	if _, err := os.Stat(socketPath); err == nil {
		conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return NewRemoteClient(socketPath)
		}
	}
	return NewLocalClient(cfg)
}
