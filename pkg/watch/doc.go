// Package watch reports changes to a fixed set of files.
//
// Watcher observes the directories containing the files rather than the
// files themselves, so editors that save by renaming a temporary file are
// handled. Bursts of events are debounced into one callback that receives
// the changed paths:
//
//	w, err := watch.New(watch.Config{Paths: files}, logger)
//	err = w.Watch(ctx, func(changed []string) error {
//		return relint(changed)
//	})
package watch
