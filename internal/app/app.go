// Package app maps user actions onto a tree session and reports their
// outcome through dialogs, the log and a short status history. It has no
// window of its own.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/iburimskiy/fractal-tree/internal/config"
	"github.com/iburimskiy/fractal-tree/internal/session"
	"github.com/iburimskiy/fractal-tree/internal/tree"
)

const HelpText = "Welcome to the Fractal Tree Generator!\n\n" +
	"Use the sliders on the right to adjust the tree's parameters:\n" +
	"- Recursion Depth: how many levels of branching occur.\n" +
	"- Branch Angle: the angle between a branch and each of its children.\n" +
	"- Length Factor: how much shorter each branch is than its parent.\n" +
	"- Initial Length: the length of the trunk.\n" +
	"- Angle / Length Randomness: variation applied to every branch.\n" +
	"- Branch Thickness: the width of the trunk.\n" +
	"- Branch Color Shade: the colour of the branches.\n\n" +
	"Lock a parameter to keep it when you press Randomize.\n" +
	"Save and Load keep your settings in a JSON file; Export writes a PNG, JPEG or SVG image.\n\n" +
	"Keys: R randomize, S save, L load, E export, H help, Esc/Q quit."

// App carries out the actions behind the controls.
type App struct {
	session *session.Session
	dialogs Dialogs
	logger  *slog.Logger
	status  *statusRing
	export  config.ExportConfig

	watch        bool
	watcher      *settingsWatcher
	settingsPath string
}

// Option configures an App.
type Option func(*App)

// WithDialogs replaces the zenity dialogs.
func WithDialogs(d Dialogs) Option {
	return func(a *App) {
		if d != nil {
			a.dialogs = d
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an App driving s. Export size and settings watching come from cfg.
func New(s *session.Session, cfg config.Config, opts ...Option) *App {
	a := &App{
		session: s,
		dialogs: ZenityDialogs{},
		logger:  slog.Default(),
		status:  newStatusRing(config.StatusLines),
		export:  cfg.Export,
		watch:   cfg.Watch,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the driven session.
func (a *App) Session() *session.Session { return a.session }

// Status returns the most recent status messages, oldest first.
func (a *App) Status() []string { return a.status.snapshot(config.StatusLines) }

// SetParameter applies a control change.
func (a *App) SetParameter(name tree.Name, value float64) {
	if err := a.session.SetParameter(name, value); err != nil {
		a.fail("Invalid Value", err)
	}
}

// ToggleLock flips the lock flag of name and returns the new state.
func (a *App) ToggleLock(name tree.Name) bool {
	locked := !a.session.Locked(name)
	if err := a.session.Lock(name, locked); err != nil {
		a.fail("Lock Error", err)
		return a.session.Locked(name)
	}
	if locked {
		a.status.push(fmt.Sprintf("%s locked", name))
	} else {
		a.status.push(fmt.Sprintf("%s unlocked", name))
	}
	return locked
}

// Randomize redraws every unlocked parameter from its curated range.
func (a *App) Randomize() {
	a.session.Randomize()
	a.status.push("randomized")
}

// Export asks for a destination and writes the current tree there.
func (a *App) Export() {
	path, err := a.dialogs.SaveFile("Export Tree", "tree.png", imageFilters)
	if err != nil {
		a.fail("Export Error", err)
		return
	}
	if path == "" {
		return
	}
	a.ExportTo(path)
}

// ExportTo writes the current tree to path at the configured export size.
func (a *App) ExportTo(path string) bool {
	if err := a.session.ExportFile(path, a.export.Width, a.export.Height); err != nil {
		a.fail("Export Error", err)
		return false
	}
	a.status.push("exported " + path)
	return true
}

// SaveSettings asks for a destination and writes the parameters there.
func (a *App) SaveSettings() {
	path, err := a.dialogs.SaveFile("Save Settings", "tree.json", settingsFilters)
	if err != nil {
		a.fail("Save Error", err)
		return
	}
	if path == "" {
		return
	}
	if err := a.session.SaveSettings(path); err != nil {
		a.fail("Save Error", err)
		return
	}
	a.status.push("saved " + path)
}

// LoadSettings asks for a settings file and applies it.
func (a *App) LoadSettings() {
	path, err := a.dialogs.OpenFile("Load Settings", settingsFilters)
	if err != nil {
		a.fail("Load Error", err)
		return
	}
	if path == "" {
		return
	}
	a.LoadSettingsFrom(path)
}

// LoadSettingsFrom applies the settings file at path and, when watching is
// enabled, follows later edits to it.
func (a *App) LoadSettingsFrom(path string) bool {
	if err := a.session.LoadSettings(path); err != nil {
		a.fail("Load Error", err)
		return false
	}
	a.settingsPath = path
	a.status.push("loaded " + path)
	if a.watch {
		a.follow(path)
	}
	return true
}

// Help shows the usage text.
func (a *App) Help() {
	a.dialogs.Info("Help", HelpText)
}

// Poll reloads the watched settings file if it changed since the last call.
// It must run on the same goroutine as every other action.
func (a *App) Poll() {
	if a.watcher == nil {
		return
	}
	select {
	case <-a.watcher.Changed():
	default:
		return
	}
	if err := a.session.LoadSettings(a.settingsPath); err != nil {
		// Editors often write in several steps; the next write retries.
		a.logger.Warn("reload failed", "path", a.settingsPath, "err", err)
		a.status.push("reload failed: " + err.Error())
		return
	}
	a.status.push("reloaded " + a.settingsPath)
}

// Close stops the settings watcher.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Close()
}

func (a *App) follow(path string) {
	if a.watcher == nil {
		w, err := newSettingsWatcher(func(err error) {
			a.logger.Warn("settings watcher", "err", err)
			a.status.push("watcher: " + err.Error())
		})
		if err != nil {
			a.logger.Warn("cannot watch settings", "err", err)
			return
		}
		a.watcher = w
	}
	if err := a.watcher.Watch(path); err != nil {
		a.logger.Warn("cannot watch settings", "path", path, "err", err)
		return
	}
	a.logger.Debug("watching settings", "path", path)
}

// fail reports err without stopping the program; the session stays usable.
func (a *App) fail(title string, err error) {
	a.logger.Warn(title, "err", err)
	a.status.push("error: " + err.Error())

	msg := err.Error()
	switch {
	case errors.Is(err, tree.ErrValidation):
		msg = "The value was rejected: " + msg
	case errors.Is(err, session.ErrIO):
		msg = "An error occurred: " + msg
	}
	a.dialogs.Error(title, msg)
}
