// Package location resolves paths and URIs into comparable location handles
// and answers metadata queries (display name, icon, existence) about them.
package location

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Location is an opaque, comparable handle to a filesystem location. Native
// locations are addressable through the local filesystem; everything else
// (sftp://, smb://, network:///, ...) is kept as a canonical URI.
type Location struct {
	scheme string
	host   string
	user   string
	// p is the cleaned absolute path for native locations, and the cleaned
	// unescaped URI path for remote ones.
	p string
}

// NewForPath returns a native location for a filesystem path. Relative paths
// are made absolute against the working directory.
func NewForPath(p string) Location {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return Location{scheme: "file", p: filepath.Clean(p)}
}

// NewForURI parses a URI. file:// URIs become native locations. Strings that
// are not URIs but look like absolute paths are treated as paths; anything
// else unparseable yields the zero Location.
func NewForURI(uri string) Location {
	if strings.HasPrefix(uri, "/") {
		return NewForPath(uri)
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return Location{}
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "file" {
		if u.Host != "" && u.Host != "localhost" {
			return Location{}
		}
		return NewForPath(u.Path)
	}

	p := u.Path
	if u.Opaque != "" {
		p = u.Opaque
	}
	p = cleanURIPath(p)

	loc := Location{scheme: scheme, host: strings.ToLower(u.Host), p: p}
	if u.User != nil {
		loc.user = u.User.Username()
	}
	return loc
}

// Parse accepts either a path (absolute, relative or ~-prefixed) or a URI.
func Parse(s string) Location {
	if strings.HasPrefix(s, "~/") || s == "~" {
		if home, ok := homeDir(); ok {
			return NewForPath(filepath.Join(home, strings.TrimPrefix(s, "~")))
		}
	}
	if strings.Contains(s, "://") || strings.HasPrefix(s, "file:") {
		return NewForURI(s)
	}
	return NewForPath(s)
}

func cleanURIPath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + strings.TrimPrefix(p, "/"))
	return cleaned
}

// IsZero reports whether l is the zero Location (an unresolvable input).
func (l Location) IsZero() bool {
	return l.scheme == ""
}

// IsNative reports whether l is addressable through the local filesystem.
func (l Location) IsNative() bool {
	return l.scheme == "file"
}

// Scheme returns the lower-cased URI scheme ("file" for native locations).
func (l Location) Scheme() string {
	return l.scheme
}

// Path returns the local filesystem path, or "" for non-native locations.
func (l Location) Path() string {
	if !l.IsNative() {
		return ""
	}
	return l.p
}

// URI returns the canonical URI form of l.
func (l Location) URI() string {
	if l.IsZero() {
		return ""
	}
	if l.IsNative() {
		u := url.URL{Path: filepath.ToSlash(l.p)}
		return "file://" + u.EscapedPath()
	}
	u := url.URL{Scheme: l.scheme, Host: l.host, Path: l.p}
	if l.user != "" {
		u.User = url.User(l.user)
	}
	return u.String()
}

// BaseName returns the last element of the location's path. The root of a
// remote location yields its host.
func (l Location) BaseName() string {
	if l.IsZero() {
		return ""
	}
	if l.IsNative() {
		return filepath.Base(l.p)
	}
	if l.p == "/" {
		if l.host != "" {
			return l.host
		}
		return "/"
	}
	return path.Base(l.p)
}

// Equal compares two locations after resolution: a path, its file:// URI
// and their percent-encoded or trailing-slash variants are all equal.
func (l Location) Equal(other Location) bool {
	return l == other
}

// String implements fmt.Stringer.
func (l Location) String() string {
	if l.IsNative() {
		return l.p
	}
	return l.URI()
}

// MarshalText implements encoding.TextMarshaler using the URI form.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.URI()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Location) UnmarshalText(text []byte) error {
	*l = Parse(string(text))
	return nil
}
