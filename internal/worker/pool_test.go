package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

type mockJob struct {
	duration  time.Duration
	shouldErr bool
	panics    bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.panics {
		panic("boom")
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{}
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		p := NewPool(tt.in)
		if p.workers != tt.want {
			t.Errorf("NewPool(%d).workers = %d, want %d", tt.in, p.workers, tt.want)
		}
		p.Wait()
	}

	p := NewPool(2, WithQueueSize(64))
	if cap(p.jobQueue) != 64 {
		t.Errorf("queue capacity = %d, want 64", cap(p.jobQueue))
	}
	p.Wait()
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var executed int32
	for i := 0; i < 10; i++ {
		if !pool.Submit(&mockJob{executed: &executed}) {
			t.Fatal("Submit rejected job on open pool")
		}
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}
	if atomic.LoadInt32(&executed) != 10 {
		t.Errorf("expected 10 executions, got %d", executed)
	}
}

type concurrencyJob struct {
	start    func()
	active   *int32
	peak     *int32
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	if j.active != nil {
		n := atomic.AddInt32(j.active, 1)
		for {
			p := atomic.LoadInt32(j.peak)
			if n <= p || atomic.CompareAndSwapInt32(j.peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(j.active, -1)
	}
	select {
	case <-time.After(j.duration):
	case <-ctx.Done():
		return &mockResult{err: ctx.Err()}
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var active, peak int32
	for i := 0; i < 9; i++ {
		pool.Submit(&concurrencyJob{active: &active, peak: &peak, duration: 30 * time.Millisecond})
	}
	pool.Wait()

	if peak > 3 {
		t.Errorf("peak concurrency %d exceeds worker count 3", peak)
	}
	if peak < 2 {
		t.Errorf("expected jobs to overlap, peak was %d", peak)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{})
	pool.Submit(&mockJob{panics: true})

	errCount := 0
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			errCount++
		}
	}
	if errCount != 2 {
		t.Errorf("expected 2 errors (one failure, one panic), got %d", errCount)
	}
}

func TestPool_ResultHandler(t *testing.T) {
	var mu sync.Mutex
	var handled []Result

	pool := NewPool(2, WithResultHandler(func(r Result) {
		mu.Lock()
		handled = append(handled, r)
		mu.Unlock()
	}))
	pool.Start()

	for i := 0; i < 4; i++ {
		pool.Submit(&mockJob{})
	}
	if err := pool.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 4 {
		t.Errorf("handler saw %d results, want 4", len(handled))
	}
	if got := pool.collector.Results(); len(got) != 0 {
		t.Errorf("handler mode should not collect, got %d", len(got))
	}
}

func TestPool_TrySubmitFullQueue(t *testing.T) {
	pool := NewPool(1, WithQueueSize(1))

	if !pool.TrySubmit(&mockJob{}) {
		t.Fatal("first TrySubmit should fit in queue")
	}
	if pool.TrySubmit(&mockJob{}) {
		t.Error("TrySubmit should fail on full queue")
	}
	if pool.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", pool.Pending())
	}

	pool.Start()
	pool.Wait()
}

func TestResultCollector(t *testing.T) {
	c := NewResultCollector()
	c.Add(&mockResult{})
	c.Add(&mockResult{err: errors.New("x")})

	res := c.Results()
	if len(res) != 2 {
		t.Errorf("expected 2 results, got %d", len(res))
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	_ = pool.Shutdown(context.Background())

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&mockJob{})
	}()

	select {
	case ok := <-done:
		if ok {
			t.Error("Submit after shutdown should report false")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
	if pool.TrySubmit(&mockJob{}) {
		t.Error("TrySubmit after shutdown should report false")
	}
}

func TestPool_ShutdownDeadline(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&concurrencyJob{
		start:    func() { close(started) },
		duration: 5 * time.Second,
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := pool.Shutdown(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Shutdown did not cancel running job")
	}
}
