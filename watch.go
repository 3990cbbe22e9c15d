package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/ch8/host"
)

// watchROM restarts r with the new contents of romFile each time it
// changes. The returned function stops watching.
func watchROM(romFile string, r *host.Runner) (stop func(), err error) {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan bool)
	go func() {
		var reload <-chan time.Time
		for {
			select {
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() {
					// Editors often write a file in several steps.
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("watch: %v", err)
			case <-reload:
				reload = nil
				rom, err := os.ReadFile(romFile)
				if err != nil {
					log.Printf("watch: %v", err)
					break
				}
				log.Printf("watch: reloading %s", filepath.Base(romFile))
				r.Restart(rom)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
