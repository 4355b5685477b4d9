// store.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package params

import (
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vtolctl/vtolctl"
)

// Store holds the current Parameters and notifies subscribers whenever
// they change, whether from an explicit Set or a hot-reload triggered by
// the watched file changing on disk.
type Store struct {
	mu     sync.RWMutex
	params *vtol.Parameters
	path   string

	subMu sync.Mutex
	subs  []func()

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore loads path once and returns a Store around the result.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	p, err := cfg.ToParameters()
	if err != nil {
		return nil, err
	}
	return &Store{params: p, path: path}, nil
}

// Get returns the current Parameters. Callers must not mutate the
// returned pointer's fields directly; use Set or a hot-reload instead so
// subscribers are notified.
func (s *Store) Get() *vtol.Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Set replaces the current Parameters and notifies subscribers
// synchronously, on the calling goroutine.
func (s *Store) Set(p *vtol.Parameters) {
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to be called whenever the parameters change,
// whether via Set or a hot-reload. Subscribers must not block.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub()
	}
}

// WatchForChanges starts an fsnotify watch on the store's backing file,
// reloading and re-notifying on every write event, debounced by a short
// settle window so an editor's temp-file-then-rename save sequence
// produces a single reload rather than several. It returns immediately;
// call Stop to end the watch.
func (s *Store) WatchForChanges(logger *log.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(s.path); err != nil {
		w.Close()
		return err
	}
	s.watcher = w
	s.done = make(chan struct{})

	go s.watchLoop(logger)
	return nil
}

func (s *Store) watchLoop(logger *log.Logger) {
	const debounce = 150 * time.Millisecond
	var timer *time.Timer

	reload := func() {
		cfg, err := Load(s.path)
		if err != nil {
			if logger != nil {
				logger.Printf("params: reload of %s failed: %v", s.path, err)
			}
			return
		}
		p, err := cfg.ToParameters()
		if err != nil {
			if logger != nil {
				logger.Printf("params: reload of %s failed: %v", s.path, err)
			}
			return
		}
		s.Set(p)
	}

	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			if logger != nil {
				logger.Printf("params: watch error: %v", err)
			}
		case <-s.done:
			return
		}
	}
}

// Stop ends the hot-reload watch, if one was started.
func (s *Store) Stop() {
	if s.done != nil {
		close(s.done)
	}
	if s.watcher != nil {
		s.watcher.Close()
	}
}
