package volumes

import (
	"net/url"
	"os"
	"strings"

	"github.com/grovetools/places/pkg/location"
)

// gvfsMount describes one entry of the gvfs FUSE directory. gvfs names its
// mount directories "<type>:<key>=<value>,...", for example
// "sftp:host=example.com,user=bob" or "smb-share:server=nas,share=media".
type gvfsMount struct {
	Dir  string
	Name string
	Root location.Location
}

var gvfsSchemes = map[string]string{
	"sftp":         "sftp",
	"ftp":          "ftp",
	"ftps":         "ftps",
	"smb-share":    "smb",
	"dav":          "dav",
	"davs":         "davs",
	"afp-volume":   "afp",
	"nfs":          "nfs",
	"google-drive": "google-drive",
}

func parseGvfsName(dir string) (gvfsMount, bool) {
	kind, rest, ok := strings.Cut(dir, ":")
	if !ok {
		return gvfsMount{}, false
	}
	scheme, ok := gvfsSchemes[kind]
	if !ok {
		return gvfsMount{}, false
	}

	params := make(map[string]string)
	for _, kv := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		params[k] = v
	}

	host := params["host"]
	if host == "" {
		host = params["server"]
	}
	if host == "" {
		return gvfsMount{}, false
	}
	if port := params["port"]; port != "" {
		host += ":" + port
	}

	u := url.URL{Scheme: scheme, Host: host, Path: "/"}
	if user := params["user"]; user != "" {
		u.User = url.User(user)
	}
	name := params["host"]
	if share := params["share"]; share != "" {
		u.Path = "/" + share + "/"
		name = share + " on " + params["server"]
	} else if prefix := params["prefix"]; prefix != "" {
		u.Path = prefix
	}
	if name == "" {
		name = host
	}

	root := location.NewForURI(u.String())
	if root.IsZero() {
		return gvfsMount{}, false
	}
	return gvfsMount{Dir: dir, Name: name, Root: root}, true
}

// readGvfsDir lists the gvfs mount directory. A missing directory means no
// gvfs mounts.
func readGvfsDir(dir string) []gvfsMount {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var mounts []gvfsMount
	for _, e := range entries {
		if m, ok := parseGvfsName(e.Name()); ok {
			mounts = append(mounts, m)
		}
	}
	return mounts
}
