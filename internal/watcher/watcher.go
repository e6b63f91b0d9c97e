package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"arcsend/pkg/logger"
)

// Watcher monitors a single outbox directory and emits one settled event
// per file. Rapid create/write bursts for the same path are debounced so a
// file is shipped once, after the writer has finished with it.
type Watcher struct {
	watchPath string
	filter    Filter
	events    chan FileEvent
	errors    chan error
	fsWatcher *fsnotify.Watcher

	debounceMap   map[string]*time.Timer
	debounceMu    sync.Mutex
	debounceDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(watchPath string, filter Filter) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watchPath:     watchPath,
		filter:        filter,
		events:        make(chan FileEvent, 100),
		errors:        make(chan error, 10),
		fsWatcher:     fsWatcher,
		debounceMap:   make(map[string]*time.Timer),
		debounceDelay: 500 * time.Millisecond,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start begins watching the outbox directory.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.watchPath); err != nil {
		return err
	}
	logger.Log.Info("outbox watcher started", "path", w.watchPath)
	w.wg.Add(2)
	go w.eventLoop()
	go w.errorLoop()
	return nil
}

// Stop stops the watcher and closes its channels.
func (w *Watcher) Stop() {
	w.cancel()
	w.fsWatcher.Close()
	w.wg.Wait()
	w.debounceMu.Lock()
	for _, timer := range w.debounceMap {
		timer.Stop()
	}
	w.debounceMap = nil
	w.debounceMu.Unlock()
	close(w.events)
	close(w.errors)
	logger.Log.Info("outbox watcher stopped")
}

// Events returns the channel of settled file events.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		}
	}
}

func (w *Watcher) errorLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				logger.Log.Error("error channel full, dropping error", "err", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.filter.ShouldProcess(event.Name) {
		return
	}
	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	default:
		// Removes and renames mean there is nothing left to ship.
		return
	}
	w.debounceEvent(eventType, event.Name)
}

func (w *Watcher) debounceEvent(eventType EventType, filePath string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if timer, exists := w.debounceMap[filePath]; exists {
		timer.Stop()
	}
	timer := time.AfterFunc(w.debounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounceMap, filePath)
		w.debounceMu.Unlock()
		fileEvent := FileEvent{
			Type:      eventType,
			Path:      filePath,
			Timestamp: time.Now(),
		}
		select {
		case w.events <- fileEvent:
		case <-w.ctx.Done():
		default:
			logger.Log.Warn("events channel full, dropping event", "path", filePath)
		}
	})
	w.debounceMap[filePath] = timer
}
