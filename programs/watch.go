package programs

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the fragment shader at path whenever it is written, and
// hands the rebuilt program to onChange. onChange runs on the watcher's
// goroutine. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, precision Precision, onChange func(Program)) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}

	// Editors often replace the file rather than write it, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %v: %w", path, err)
	}

	go func() {
		defer watcher.Close()

		debounce := time.NewTimer(0)
		<-debounce.C

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				debounce.Reset(reloadDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println("shader watcher:", err)

			case <-debounce.C:
				program, err := LoadProgram(path, precision)
				if err != nil {
					log.Println(err)
					continue
				}
				onChange(program)

			case <-ctx.Done():
				debounce.Stop()
				return
			}
		}
	}()

	return nil
}
