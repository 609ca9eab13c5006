package detection

import (
	"image"
	"sync"
)

// Result carries one finished detection back to the consumer, tagged with
// the submission sequence of its frame.
type Result struct {
	Seq  uint64
	Find *FindResult
	Err  error
}

// Pool offloads quad finding to worker goroutines while keeping the
// consumer's view ordered by frame-capture sequence.
//
// Results are delivered as workers finish, but a result older than the
// newest one already delivered is dropped rather than sent: the consumer
// observes strictly increasing sequence numbers, so overlays never jump
// backward in time and captures cannot arrive out of order. A result that
// finds the buffered channel full is dropped the same way, like a skipped
// frame.
type Pool struct {
	finder  *Finder
	jobs    chan poolJob
	results chan Result

	mu        sync.Mutex
	latestSeq uint64
	nextSeq   uint64
	closed    bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

type poolJob struct {
	seq uint64
	img image.Image
}

// NewPool starts a detection pool with the given worker count. queue bounds
// both the pending-job and pending-result buffers.
func NewPool(finder *Finder, workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = 1
	}

	p := &Pool{
		finder:  finder,
		jobs:    make(chan poolJob, queue),
		results: make(chan Result, queue),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues one frame for detection and returns its sequence number.
//
// Returns ok=false when the pool is closed or the job queue is full; the
// frame is then skipped, which is the same degradation the single-threaded
// pipeline applies under load.
func (p *Pool) Submit(img image.Image) (seq uint64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, false
	}

	p.nextSeq++
	job := poolJob{seq: p.nextSeq, img: img}
	select {
	case p.jobs <- job:
		return job.seq, true
	default:
		return 0, false
	}
}

// Results returns the channel of finished detections. It closes after
// Close, once every in-flight job has drained.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops the pool. Pending jobs still run and deliver before the
// result channel closes. Safe to call repeatedly.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		close(p.jobs)
		p.wg.Wait()
		close(p.results)
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		find, err := p.finder.Find(job.img)
		p.deliver(Result{Seq: job.seq, Find: find, Err: err})
	}
}

// deliver sends a result unless it is stale or the consumer is behind.
func (p *Pool) deliver(res Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if res.Seq <= p.latestSeq {
		return
	}
	select {
	case p.results <- res:
		p.latestSeq = res.Seq
	default:
	}
}
