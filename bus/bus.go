// bus.go

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

/*Package bus provides a small generic publish/subscribe substrate built
around latest-value semantics rather than delivery queues: every reader
sees only the most recently published sample of a topic, never a backlog.
This mirrors the way flight-control message buses are actually consumed -
a control loop wants "what is true right now", not "everything that has
happened since I last looked".
*/
package bus

import (
	"sync"
	"time"
)

// Topic is a single-writer, multi-reader latest-value cell for values of
// type T. The zero Topic is an empty topic ready for use; NewTopic returns
// a pointer to one.
type Topic[T any] struct {
	mu        sync.RWMutex
	value     T
	published time.Time
	valid     bool

	subMu sync.Mutex
	subs  []func(T)
}

// NewTopic returns an empty Topic. No value is Get-able until the first
// Publish.
func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{}
}

// Publish stores value as the topic's latest sample and synchronously
// invokes every subscriber with it. Publish returns only after every
// subscriber has returned, so subscribers are expected to do no blocking
// work, matching the coordinator's own non-blocking read/write contract.
func (t *Topic[T]) Publish(value T) {
	t.mu.Lock()
	t.value = value
	t.published = time.Now()
	t.valid = true
	t.mu.Unlock()

	t.subMu.Lock()
	subs := make([]func(T), len(t.subs))
	copy(subs, t.subs)
	t.subMu.Unlock()

	for _, sub := range subs {
		sub(value)
	}
}

// Get returns the most recently published value, when it was published,
// and whether anything has been published yet.
func (t *Topic[T]) Get() (value T, published time.Time, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value, t.published, t.valid
}

// Subscribe registers fn to be called, synchronously, from every future
// Publish. It is not called with the topic's current value; callers that
// need the current value should Get it first.
func (t *Topic[T]) Subscribe(fn func(T)) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	t.subs = append(t.subs, fn)
}

// Bus is a named registry of topics, used to wire a fixed set of inbound
// and outbound streams without every producer and consumer needing to
// share typed handles directly.
type Bus struct {
	mu     sync.Mutex
	topics map[string]any
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string]any)}
}

// For returns the named topic, creating it as a Topic[T] on first use. A
// second call with a different T for the same name panics, since that
// indicates a wiring bug rather than a runtime condition callers should
// recover from.
func For[T any](b *Bus, name string) *Topic[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.topics[name]; ok {
		t, ok := existing.(*Topic[T])
		if !ok {
			panic("bus: topic " + name + " already registered with a different type")
		}
		return t
	}
	t := NewTopic[T]()
	b.topics[name] = t
	return t
}
