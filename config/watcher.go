package config

import (
	"bytes"
	"context"
	"time"

	"github.com/a8m/envsubst"
	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/ecubench/logging"
)

// DefaultWatchDebounce is how long a config file must stay unchanged before it is reread.
const DefaultWatchDebounce = 250 * time.Millisecond

// A Watcher is responsible for watching for changes
// to a config from some source and delivering those changes
// to some destination.
type Watcher interface {
	Config() <-chan *Config
	Close() error
}

// NewWatcher returns a watcher delivering every valid new version of the config file at
// filePath. Invalid versions are logged and skipped.
func NewWatcher(ctx context.Context, filePath string, debounceFor time.Duration, logger logging.Logger) (Watcher, error) {
	if debounceFor == 0 {
		debounceFor = DefaultWatchDebounce
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filePath); err != nil {
		return nil, multierr.Combine(err, fsWatcher.Close())
	}

	prev, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, multierr.Combine(err, fsWatcher.Close())
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	w := &fsConfigWatcher{
		fsWatcher:     fsWatcher,
		configCh:      make(chan *Config),
		watcherDoneCh: make(chan struct{}),
		cancel:        cancel,
	}
	settled := make(chan struct{}, 1)
	debounced := debounce.New(debounceFor)
	utils.ManagedGo(func() {
		for {
			if cancelCtx.Err() != nil {
				return
			}
			select {
			case <-cancelCtx.Done():
				return
			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				logger.Warnw("config watcher error", "error", err)
			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				debounced(func() {
					select {
					case settled <- struct{}{}:
					default:
					}
				})
			case <-settled:
				rd, err := envsubst.ReadFile(filePath)
				if err != nil {
					logger.Errorw("error reading config after write", "error", err)
					continue
				}
				if bytes.Equal(rd, prev) {
					continue
				}
				newConfig, err := FromReader(filePath, bytes.NewReader(rd))
				if err != nil {
					logger.Errorw("error reading config after write", "error", err)
					continue
				}
				prev = rd
				select {
				case <-cancelCtx.Done():
					return
				case w.configCh <- newConfig:
				}
			}
		}
	}, func() { close(w.watcherDoneCh) })
	return w, nil
}

type fsConfigWatcher struct {
	fsWatcher     *fsnotify.Watcher
	configCh      chan *Config
	watcherDoneCh chan struct{}
	cancel        func()
}

func (w *fsConfigWatcher) Config() <-chan *Config {
	return w.configCh
}

func (w *fsConfigWatcher) Close() error {
	w.cancel()
	<-w.watcherDoneCh
	return w.fsWatcher.Close()
}
