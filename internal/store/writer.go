package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Persister accepts collection snapshots for durable storage.
type Persister interface {
	Enqueue(key string, v any)
}

// Writer persists snapshots in the background. Enqueue never blocks on the
// backend; when several snapshots of the same key are pending only the
// latest is written.
type Writer struct {
	kv      KV
	timeout time.Duration
	onError func(key string, err error)

	mu      sync.Mutex
	pending map[string][]byte

	wake    chan struct{}
	flush   chan chan struct{}
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewWriter starts a background writer for kv. onError is called from the
// writer goroutine for every failed write and may be nil.
func NewWriter(kv KV, onError func(key string, err error)) *Writer {
	w := &Writer{
		kv:      kv,
		timeout: 5 * time.Second,
		onError: onError,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		flush:   make(chan chan struct{}),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue snapshots v as JSON and schedules it for writing at key.
func (w *Writer) Enqueue(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("unable to encode %s snapshot: %v", key, err)
		w.report(key, err)
		return
	}

	w.mu.Lock()
	w.pending[key] = data
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot enqueued before the call was attempted.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case w.flush <- done:
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes what is pending and stops the writer.
func (w *Writer) Close() {
	w.once.Do(func() { close(w.quit) })
	<-w.stopped
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain()
		case done := <-w.flush:
			w.drain()
			close(done)
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string][]byte)
	w.mu.Unlock()

	for key, data := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.kv.Put(ctx, key, data)
		cancel()
		if err != nil {
			log.Printf("unable to persist %s: %v", key, err)
			w.report(key, err)
		}
	}
}

func (w *Writer) report(key string, err error) {
	if w.onError != nil {
		w.onError(key, err)
	}
}
