package app

import (
	"errors"

	"github.com/ncruces/zenity"
)

// FileFilter restricts a file dialog to a set of glob patterns.
type FileFilter struct {
	Name     string
	Patterns []string
}

// Dialogs is the native dialog surface. An empty path with a nil error
// means the user cancelled.
type Dialogs interface {
	SaveFile(title, defaultName string, filters []FileFilter) (string, error)
	OpenFile(title string, filters []FileFilter) (string, error)
	Error(title, msg string)
	Info(title, msg string)
}

var (
	imageFilters = []FileFilter{
		{Name: "PNG files", Patterns: []string{"*.png"}},
		{Name: "JPEG files", Patterns: []string{"*.jpg", "*.jpeg"}},
		{Name: "SVG files", Patterns: []string{"*.svg"}},
	}
	settingsFilters = []FileFilter{
		{Name: "JSON files", Patterns: []string{"*.json"}},
	}
)

// ZenityDialogs shows dialogs through zenity.
type ZenityDialogs struct{}

func (ZenityDialogs) SaveFile(title, defaultName string, filters []FileFilter) (string, error) {
	path, err := zenity.SelectFileSave(
		zenity.Title(title),
		zenity.Filename(defaultName),
		zenity.ConfirmOverwrite(),
		toZenity(filters),
	)
	return cancelled(path, err)
}

func (ZenityDialogs) OpenFile(title string, filters []FileFilter) (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title(title),
		toZenity(filters),
	)
	return cancelled(path, err)
}

func (ZenityDialogs) Error(title, msg string) {
	_ = zenity.Error(msg, zenity.Title(title))
}

func (ZenityDialogs) Info(title, msg string) {
	_ = zenity.Info(msg, zenity.Title(title))
}

func toZenity(filters []FileFilter) zenity.FileFilters {
	out := make(zenity.FileFilters, 0, len(filters))
	for _, f := range filters {
		out = append(out, zenity.FileFilter{Name: f.Name, Patterns: f.Patterns})
	}
	return out
}

func cancelled(path string, err error) (string, error) {
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}
