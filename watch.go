package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/goopsie/xfileTools/logging"
)

// watchZones extracts each zone once and then again on every write to it,
// until interrupted. Directories are watched rather than the files so that
// zones replaced by rename are still seen.
func watchZones(c *cli.Context) error {
	if err := applyOutputFlags(c); err != nil {
		return err
	}
	if c.NArg() == 0 {
		return errors.New("watch: no files given")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()

	zones := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range c.Args().Slice() {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "resolve %s", p)
		}
		zones[abs] = true
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return errors.Wrapf(err, "watch %s", dir)
			}
			dirs[dir] = true
		}
		reextract(abs)
	}

	for {
		select {
		case <-c.Context.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !zones[ev.Name] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logging.Debug("zone changed", "path", ev.Name, "op", ev.Op)
			reextract(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watcher error", "err", err)
		}
	}
}

func reextract(path string) {
	if err := extractZone(path); err != nil {
		logging.Error("extract failed", "path", path, "err", err)
	}
}
