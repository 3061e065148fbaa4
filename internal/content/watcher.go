package content

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"edpsych-connect/internal/common/logger"
)

// Watcher invalidates the listing when the approved directory changes outside
// the API, for example when an editor copies a file in by hand.
type Watcher struct {
	service *Service
	dir     string
	log     logger.Logger
	// changed is signalled after each invalidation; used by tests.
	changed chan struct{}
}

func NewWatcher(service *Service, log logger.Logger) *Watcher {
	return &Watcher{
		service: service,
		dir:     service.Store().ApprovedDir(),
		log:     log.WithFields(map[string]interface{}{"component": "content-watcher"}),
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", w.dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("Watching approved posts", map[string]interface{}{"dir": w.dir})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, Extension) || event.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debug("Approved directory changed", map[string]interface{}{
				"file": event.Name,
				"op":   event.Op.String(),
			})
			w.service.InvalidateListing(ctx)
			if w.changed != nil {
				select {
				case w.changed <- struct{}{}:
				default:
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}
