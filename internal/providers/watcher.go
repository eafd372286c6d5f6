package providers

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/systmms/secretchain/internal/logging"
)

// DefaultWatchDebounce coalesces bursts of write events into one reload.
const DefaultWatchDebounce = 100 * time.Millisecond

// fileWatcher delivers change notifications for a single file.
//
// The parent directory is watched rather than the file itself so editors
// that replace the file through a rename are still observed. Events are
// handled by one goroutine, which debounces them and then calls onChange
// itself; onChange therefore never runs concurrently with itself.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	onChange func()
	logger   *logging.Logger

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func newFileWatcher(path string, debounce time.Duration, logger *logging.Logger, onChange func()) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets file path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close() // Best effort close on error path
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	fw := &fileWatcher{
		watcher:  watcher,
		target:   filepath.Clean(abs),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go fw.loop()

	return fw, nil
}

func (fw *fileWatcher) loop() {
	defer close(fw.doneCh)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			fw.logger.Debug("Secrets file change detected (%s)", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			fw.onChange()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("Secrets file watcher error: %v", err)

		case <-fw.stopCh:
			return
		}
	}
}

// Close stops the event loop and releases the subscription. It is safe to
// call more than once.
func (fw *fileWatcher) Close() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
		err = fw.watcher.Close()
		<-fw.doneCh
	})
	return err
}
