package cli

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/config"
	"go.viam.com/ecubench/logging"
)

type chanWatcher struct {
	configs chan *config.Config
}

func (w *chanWatcher) Config() <-chan *config.Config { return w.configs }
func (w *chanWatcher) Close() error                 { return nil }

func TestCatalogWatchStops(t *testing.T) {
	watcher := &chanWatcher{configs: make(chan *config.Config)}
	applied := make(chan *catalog.Catalog, 1)
	stop := startCatalogWatch(context.Background(), watcher, func(cat *catalog.Catalog) {
		applied <- cat
	}, logging.NewTestLogger(t))

	watcher.configs <- &config.Config{}
	cat := <-applied
	test.That(t, cat.Len(), test.ShouldEqual, catalog.Default().Len())

	stop()
	// Nothing reads the feed once stop has returned.
	select {
	case watcher.configs <- &config.Config{}:
		t.Fatal("catalog watch still running after stop")
	default:
	}
}
