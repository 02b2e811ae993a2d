package services

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Invalidator is anything holding derived state rebuilt from a
// snapshot file.
type Invalidator interface {
	Invalidate()
}

// RefresherService keeps the in-memory snapshots in sync with the
// source files without a process restart: an optional cron schedule
// forces periodic rebuilds and an optional fsnotify watch invalidates
// as soon as a snapshot file changes on disk.
type RefresherService struct {
	logger  *logrus.Logger
	targets []Invalidator

	schedule string
	paths    []string

	cron    *cron.Cron
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	isRunning bool
}

// NewRefresherService creates a refresher over the given snapshot
// paths. Empty schedule disables cron, watch=false disables fsnotify.
func NewRefresherService(schedule string, watch bool, paths []string, logger *logrus.Logger, targets ...Invalidator) *RefresherService {
	r := &RefresherService{
		logger:   logger,
		targets:  targets,
		schedule: schedule,
	}
	if watch {
		r.paths = paths
	}
	return r
}

// Start wires up the cron entry and the file watcher. Both are
// best-effort: a watch that cannot be established only logs.
func (r *RefresherService) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		return nil
	}

	if r.schedule != "" {
		r.cron = cron.New()
		if _, err := r.cron.AddFunc(r.schedule, func() {
			r.logger.WithField("schedule", r.schedule).Info("Scheduled snapshot refresh")
			r.invalidateAll()
		}); err != nil {
			return err
		}
		r.cron.Start()
		r.logger.WithField("schedule", r.schedule).Info("Snapshot refresh schedule active")
	}

	if len(r.paths) > 0 {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			r.logger.WithError(err).Warn("Snapshot watch unavailable")
		} else {
			r.watcher = watcher
			watched := map[string]bool{}
			for _, p := range r.paths {
				if _, err := os.Stat(p); err != nil {
					continue
				}
				// Watch the containing directory so atomic
				// rename-into-place updates are seen too.
				dir := filepath.Dir(p)
				if !watched[dir] {
					if err := watcher.Add(dir); err != nil {
						r.logger.WithError(err).WithField("dir", dir).Warn("Failed to watch snapshot directory")
						continue
					}
					watched[dir] = true
				}
			}
			go r.watchLoop()
			r.logger.WithField("paths", r.paths).Info("Watching snapshot files for changes")
		}
	}

	r.isRunning = true
	return nil
}

func (r *RefresherService) watchLoop() {
	interesting := map[string]bool{}
	for _, p := range r.paths {
		interesting[filepath.Clean(p)] = true
	}
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !interesting[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			r.logger.WithFields(logrus.Fields{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Info("Snapshot file changed, invalidating derived state")
			r.invalidateAll()
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.WithError(err).Warn("Snapshot watcher error")
		}
	}
}

func (r *RefresherService) invalidateAll() {
	for _, t := range r.targets {
		t.Invalidate()
	}
}

// Stop tears down the cron and watcher.
func (r *RefresherService) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isRunning {
		return
	}
	if r.cron != nil {
		r.cron.Stop()
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
	r.isRunning = false
}
