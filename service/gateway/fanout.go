package gateway

import (
	"sync"

	"VChat/tools/safe"
)

type fanoutTarget struct {
	userID string
	ch     Channel
}

type fanoutJob struct {
	targets []fanoutTarget
	payload []byte
}

// Fanout is a small worker pool for async delivery to many recipients.
// Write failures are reported through onFailure, same contract as the
// router's synchronous paths.
type Fanout struct {
	mu        sync.Mutex
	jobs      chan fanoutJob
	closed    bool
	onFailure func(userID string, ch Channel)
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewFanout(workers, queue int, onFailure func(userID string, ch Channel)) *Fanout {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 1024
	}
	if onFailure == nil {
		onFailure = func(string, Channel) {}
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue), onFailure: onFailure}
	for i := 0; i < workers; i++ {
		f.wg.Add(1)
		safe.SafeGo(func() {
			defer f.wg.Done()
			for job := range f.jobs {
				for _, t := range job.targets {
					if err := t.ch.Send(job.payload); err != nil {
						f.onFailure(t.userID, t.ch)
					}
				}
			}
		})
	}
	return f
}

// Enqueue drops the job silently once the pool is closed; late async
// broadcasts during shutdown are not worth delivering.
func (f *Fanout) Enqueue(targets []fanoutTarget, payload []byte) {
	if len(targets) == 0 || len(payload) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.jobs <- fanoutJob{targets: targets, payload: payload}
}

// Close drains the queue and waits for workers to finish.
func (f *Fanout) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.jobs) })
	f.wg.Wait()
}
