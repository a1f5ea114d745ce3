package places

import (
	"path/filepath"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/paths"
)

// Dirs resolves the home directory and the per-user special directories.
type Dirs interface {
	Home() string
	// UserDir returns the path configured for d, or "" when unset.
	UserDir(d paths.UserDir) string
}

var userDirIcons = map[paths.UserDir]string{
	paths.UserDirDocuments: "folder-documents",
	paths.UserDirDownload:  "folder-download",
	paths.UserDirMusic:     "folder-music",
	paths.UserDirPictures:  "folder-pictures",
	paths.UserDirVideos:    "folder-videos",
}

// SpecialIcons maps the home and user directories to their themed icons,
// for use with location.NewFileService.
func SpecialIcons(dirs Dirs) map[string]string {
	icons := map[string]string{}
	home := filepath.Clean(dirs.Home())
	for _, d := range paths.DefaultUserDirs {
		if p := dirs.UserDir(d); p != "" {
			icons[filepath.Clean(p)] = userDirIcons[d]
		}
	}
	if dirs.Home() != "" {
		icons[home] = "user-home"
	}
	return icons
}

// buildSpecial returns Home followed by every user directory that exists
// and is not the home directory itself.
func buildSpecial(f *Factory, dirs Dirs, service location.Service) []*Entry {
	home := filepath.Clean(dirs.Home())
	special := []*Entry{
		f.Place(KindSpecial, location.NewForPath(home), "Home", ""),
	}

	for _, d := range paths.DefaultUserDirs {
		p := dirs.UserDir(d)
		if p == "" || filepath.Clean(p) == home {
			continue
		}
		loc := location.NewForPath(p)
		if _, err := service.DisplayName(loc); errors.Is(err, errors.ErrCodeNotFound) {
			continue
		}
		special = append(special, f.Place(KindSpecial, loc, "", ""))
	}
	return special
}
