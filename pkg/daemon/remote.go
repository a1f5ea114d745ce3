package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/pkg/places"
	"github.com/grovetools/places/version"
)

// RemoteClient implements Client by calling the daemon's HTTP API over a Unix socket.
type RemoteClient struct {
	httpClient *http.Client
	socketPath string
	baseURL    string
}

// baseURL is the dummy host used for Unix socket HTTP requests.
// The actual connection goes through the Unix socket, not this URL.
const baseURL = "http://unix"

// NewRemoteClient creates a new RemoteClient connected to the daemon socket.
func NewRemoteClient(socketPath string) *RemoteClient {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &RemoteClient{
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
		socketPath: socketPath,
		baseURL:    baseURL,
	}
}

// newHTTPClient points a RemoteClient at a plain HTTP server. Used by tests.
func newHTTPClient(url string, client *http.Client) *RemoteClient {
	return &RemoteClient{httpClient: client, baseURL: url}
}

func (c *RemoteClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "failed to reach places daemon").
			WithDetail("socket", c.socketPath)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "daemon has no "+path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("daemon returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// GetPlaces returns all four lists from the daemon.
func (c *RemoteClient) GetPlaces(ctx context.Context) (places.Snapshot, error) {
	var snap places.Snapshot
	err := c.getJSON(ctx, "/api/places", &snap)
	return snap, err
}

// GetPlace returns one list from the daemon.
func (c *RemoteClient) GetPlace(ctx context.Context, kind places.Kind) ([]places.EntryView, error) {
	var views []places.EntryView
	if err := c.getJSON(ctx, "/api/places/"+kind.String(), &views); err != nil {
		return nil, err
	}
	return views, nil
}

// Status returns the daemon's status.
func (c *RemoteClient) Status(ctx context.Context) (Status, error) {
	var status Status
	err := c.getJSON(ctx, "/api/status", &status)
	return status, err
}

// IsRunning returns true if the daemon is available and responding.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// StreamPlaces subscribes to list changes via Server-Sent Events (SSE).
func (c *RemoteClient) StreamPlaces(ctx context.Context) (<-chan Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// Streams stay open; reuse the transport without the request timeout.
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "failed to connect to stream")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	ch := make(chan Update, 10)
	go func() {
		defer resp.Body.Close()
		defer close(ch)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var update Update
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update); err != nil {
				continue
			}
			select {
			case ch <- update:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Close cleans up any resources used by the client.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ Client = (*RemoteClient)(nil)
