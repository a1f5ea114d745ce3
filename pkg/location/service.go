package location

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/grovetools/places/errors"
)

// Service answers metadata queries about locations. Lookups return coded
// errors (errors.ErrCodeNotFound, errors.ErrCodeNotSupported) instead of
// fallbacks; choosing a fallback is the caller's policy.
type Service interface {
	// DisplayName returns the user-visible name of the location.
	DisplayName(loc Location) (string, error)
	// Icon returns the themed icon for the location, or its symbolic variant.
	Icon(loc Location, symbolic bool) (Icon, error)
	// Exists reports whether a native location exists. Non-native locations
	// are never checked and report false.
	Exists(loc Location) bool
}

// FileService implements Service on top of the local filesystem.
type FileService struct {
	specialIcons map[string]string
}

// NewFileService returns a FileService. specialIcons maps native paths
// (home, documents, ...) to the icon names used for them instead of the
// generic folder icon.
func NewFileService(specialIcons map[string]string) *FileService {
	icons := make(map[string]string, len(specialIcons))
	for p, name := range specialIcons {
		icons[filepath.Clean(p)] = name
	}
	return &FileService{specialIcons: icons}
}

// DisplayName implements Service.
func (s *FileService) DisplayName(loc Location) (string, error) {
	if !loc.IsNative() {
		return "", errors.NotSupported(loc.String(), "display-name")
	}
	if _, err := os.Stat(loc.Path()); err != nil {
		return "", errors.NotFound(loc.String(), err)
	}
	name := loc.BaseName()
	if !utf8.ValidString(name) {
		name = strings.ToValidUTF8(name, "�") + " (invalid encoding)"
	}
	return name, nil
}

// Icon implements Service.
func (s *FileService) Icon(loc Location, symbolic bool) (Icon, error) {
	if !loc.IsNative() {
		return Icon{}, errors.NotSupported(loc.String(), "icon")
	}
	info, err := os.Stat(loc.Path())
	if err != nil {
		return Icon{}, errors.NotFound(loc.String(), err)
	}

	var icon Icon
	switch {
	case s.specialIcons[loc.Path()] != "":
		icon = Themed(s.specialIcons[loc.Path()])
	case info.IsDir():
		icon = Themed("folder")
	default:
		icon = Themed(iconNameForFile(loc.Path()))
	}
	if symbolic {
		return icon.Symbolic(), nil
	}
	return icon, nil
}

// Exists implements Service.
func (s *FileService) Exists(loc Location) bool {
	if !loc.IsNative() {
		return false
	}
	_, err := os.Stat(loc.Path())
	return err == nil
}

// iconNameForFile maps the detected MIME type to an icon-theme name:
// "application/pdf" becomes "application-pdf".
func iconNameForFile(p string) string {
	mtype, err := mimetype.DetectFile(p)
	if err != nil {
		return "text-x-generic"
	}
	mime, _, _ := strings.Cut(mtype.String(), ";")
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return "text-x-generic"
	}
	return strings.ReplaceAll(mime, "/", "-")
}

func homeDir() (string, bool) {
	if home := os.Getenv("HOME"); home != "" {
		return home, true
	}
	home, err := os.UserHomeDir()
	return home, err == nil
}
