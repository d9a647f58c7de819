package patch

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch sends a freshly read config on configs whenever the file at path,
// or one of the sample files it names, changes. It stops when done is
// closed.
func Watch(path string, configs chan<- *Config, errors chan<- error, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	err = watcher.Add(path)
	if err != nil {
		watcher.Close()
		return err
	}
	if c, err := ReadConfig(path); err == nil {
		watchSamples(watcher, c)
	}
	go func() {
	loop:
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					break loop
				}
				// getting rename, chmod, remove event when editing conf on linux
				if event.Op&(fsnotify.Remove|fsnotify.Rename) > 0 {
					// editors save by replacing the file; wait for the new
					// one, ReadConfig would write the default over a gap
					if !waitForFile(event.Name, done) {
						errors <- fmt.Errorf("%s is gone", event.Name)
						continue loop
					}
					watcher.Add(event.Name)
				} else if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue loop
				}
				if _, err := os.Stat(path); err != nil {
					continue loop
				}
				c, err := ReadConfig(path)
				if err != nil {
					errors <- err
					continue loop
				}
				watchSamples(watcher, c)
				configs <- c
			case err, ok := <-watcher.Errors:
				if !ok {
					break loop
				}
				errors <- err
			case <-done:
				break loop
			}
		}
		// ignore close error
		watcher.Close()
	}()
	return nil
}

// reappear bounds how long a removed file is waited for.
var reappear = 5 * time.Second

// waitForFile polls until name exists again. It gives up after reappear
// or when done is closed.
func waitForFile(name string, done <-chan struct{}) bool {
	deadline := time.After(reappear)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if _, err := os.Stat(name); err == nil {
			return true
		}
		select {
		case <-tick.C:
		case <-deadline:
			return false
		case <-done:
			return false
		}
	}
}

// watchSamples adds the sample files of c; files already watched are
// not added twice by fsnotify.
func watchSamples(w *fsnotify.Watcher, c *Config) {
	for _, s := range c.Samples {
		// missing files are reported when the samples are loaded
		w.Add(c.SamplePath(s))
	}
}
