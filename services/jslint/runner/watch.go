// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/jslint/services/jslint/report"
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// watchTarget is one path given to Watch.
type watchTarget struct {
	root  string
	isDir bool
}

// Watch re-checks files as they change until ctx is cancelled.
//
// Description:
//
//	Directories are watched recursively, including directories created
//	later. Write and create events on a checked file are debounced; once
//	a file has been quiet for the debounce interval it is checked and
//	onResult is called. Calls to onResult are serialised.
//
// Inputs:
//
//	ctx      - Watching stops when ctx is done.
//	paths    - Files and directories to watch.
//	onResult - Receives each new result. Must not be nil.
//
// Outputs:
//
//	error - Non-nil if the watcher cannot be created or a path cannot be
//	        watched. Cancellation returns nil.
func (r *Runner) Watch(ctx context.Context, paths []string, onResult func(report.FileResult)) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	var targets []watchTarget
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		t := watchTarget{root: filepath.Clean(p), isDir: info.IsDir()}
		targets = append(targets, t)
		if t.isDir {
			if err := r.addTree(watcher, t.root, t.root); err != nil {
				return err
			}
		} else if err := watcher.Add(filepath.Dir(t.root)); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	r.logger.Info("watching for changes",
		slog.Int("paths", len(paths)),
		slog.Duration("debounce", r.debounce))

	timers := make(map[string]*time.Timer)
	fired := make(chan string, 16)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watch error", slog.String("error", err.Error()))

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(ev.Name)

			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(name); err == nil && info.IsDir() {
					if root, ok := r.owningDir(targets, name); ok {
						if err := r.addTree(watcher, root, name); err != nil {
							r.logger.Warn("cannot watch new directory",
								slog.String("path", name),
								slog.String("error", err.Error()))
						}
					}
					continue
				}
			}

			if !r.watched(targets, name) {
				continue
			}
			if t, ok := timers[name]; ok {
				t.Reset(r.debounce)
				continue
			}
			timers[name] = time.AfterFunc(r.debounce, func() {
				select {
				case fired <- name:
				case <-ctx.Done():
				}
			})

		case name := <-fired:
			delete(timers, name)
			if _, err := os.Stat(name); err != nil {
				continue
			}
			onResult(r.CheckFile(ctx, name))
		}
	}
}

// addTree watches dir and every non-skipped directory below it.
func (r *Runner) addTree(w *fsnotify.Watcher, root, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (alwaysSkipped[d.Name()] || r.cfg.Excluded(relSlash(root, p))) {
			return fs.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// owningDir returns the watched directory root that contains dir.
func (r *Runner) owningDir(targets []watchTarget, dir string) (string, bool) {
	for _, t := range targets {
		if !t.isDir {
			continue
		}
		rel, err := filepath.Rel(t.root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rs := filepath.ToSlash(rel)
		if r.cfg.Excluded(rs) || alwaysSkipped[filepath.Base(dir)] {
			return "", false
		}
		return t.root, true
	}
	return "", false
}

// watched reports whether a changed file should be re-checked.
func (r *Runner) watched(targets []watchTarget, name string) bool {
	for _, t := range targets {
		if !t.isDir {
			if name == t.root {
				return syntax.LanguageForPath(name) != syntax.LanguageUnknown
			}
			continue
		}
		if root, ok := r.owningDir([]watchTarget{t}, filepath.Dir(name)); ok {
			return r.cfg.AcceptsExtension(name) && !r.cfg.Excluded(relSlash(root, name))
		}
	}
	return false
}
