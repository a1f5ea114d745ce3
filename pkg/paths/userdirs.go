package paths

import (
	"github.com/adrg/xdg"
)

// UserDir names one of the well-known per-user directories.
type UserDir string

const (
	UserDirDocuments UserDir = "documents"
	UserDirDownload  UserDir = "download"
	UserDirMusic     UserDir = "music"
	UserDirPictures  UserDir = "pictures"
	UserDirVideos    UserDir = "videos"
)

// DefaultUserDirs lists the special directories shown below Home, in display order.
var DefaultUserDirs = []UserDir{
	UserDirDocuments,
	UserDirDownload,
	UserDirMusic,
	UserDirPictures,
	UserDirVideos,
}

// SystemDirs resolves user directories from the XDG user-dirs configuration
// (~/.config/user-dirs.dirs) with the platform defaults as fallback.
type SystemDirs struct{}

// Reload re-reads the XDG environment and user-dirs file.
func (SystemDirs) Reload() {
	xdg.Reload()
}

// Home returns the home directory.
func (SystemDirs) Home() string {
	if home := HomeDir(); home != "" {
		return home
	}
	return xdg.Home
}

// UserDir returns the configured path for d, or "" when it is unknown.
func (SystemDirs) UserDir(d UserDir) string {
	switch d {
	case UserDirDocuments:
		return xdg.UserDirs.Documents
	case UserDirDownload:
		return xdg.UserDirs.Download
	case UserDirMusic:
		return xdg.UserDirs.Music
	case UserDirPictures:
		return xdg.UserDirs.Pictures
	case UserDirVideos:
		return xdg.UserDirs.Videos
	}
	return ""
}
