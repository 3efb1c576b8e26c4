package engine

import (
	"runtime"
	"sync"
	"time"
)

// DefaultIdleExpiry is how long an idle worker waits for work before exiting.
const DefaultIdleExpiry = time.Second

// WorkerPool runs submitted tasks on at most size goroutines. Workers are
// started on demand and exit after sitting idle for the expiry duration, so
// a pool shared across placements costs nothing between searches.
type WorkerPool struct {
	size   int
	expiry time.Duration

	mu      sync.Mutex
	queue   []func()
	running int
	idle    int
	wake    chan struct{}
}

// NewWorkerPool creates a pool of at most size workers (one per CPU when
// size < 1). A non-positive expiry uses DefaultIdleExpiry.
func NewWorkerPool(size int, expiry time.Duration) *WorkerPool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	if expiry <= 0 {
		expiry = DefaultIdleExpiry
	}
	return &WorkerPool{
		size:   size,
		expiry: expiry,
		wake:   make(chan struct{}, size),
	}
}

var (
	defaultPool     *WorkerPool
	defaultPoolOnce sync.Once
)

// DefaultPool returns the process-wide pool sized to the available CPUs.
func DefaultPool() *WorkerPool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewWorkerPool(runtime.NumCPU(), DefaultIdleExpiry)
	})
	return defaultPool
}

// Size returns the maximum number of concurrent workers.
func (p *WorkerPool) Size() int { return p.size }

// Running returns the number of live workers.
func (p *WorkerPool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Submit queues task. It never blocks on task execution.
func (p *WorkerPool) Submit(task func()) {
	p.mu.Lock()
	p.queue = append(p.queue, task)
	switch {
	case p.idle > 0:
		p.mu.Unlock()
		select {
		case p.wake <- struct{}{}:
		default:
		}
	case p.running < p.size:
		p.running++
		p.mu.Unlock()
		go p.work()
	default:
		// Every worker is busy and will drain the queue when it finishes.
		p.mu.Unlock()
	}
}

func (p *WorkerPool) work() {
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			task := p.queue[0]
			p.queue[0] = nil
			p.queue = p.queue[1:]
			p.mu.Unlock()
			task()
			continue
		}
		p.idle++
		p.mu.Unlock()

		timer := time.NewTimer(p.expiry)
		select {
		case <-p.wake:
			timer.Stop()
			p.mu.Lock()
			p.idle--
			p.mu.Unlock()
		case <-timer.C:
			p.mu.Lock()
			p.idle--
			if len(p.queue) > 0 {
				p.mu.Unlock()
				continue
			}
			p.running--
			p.mu.Unlock()
			return
		}
	}
}
