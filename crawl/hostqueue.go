package crawl

import "sync"

// Task is a unit of work admitted through a HostQueue.
type Task struct {
	// Run performs the work on a download worker.
	Run func()

	// Done, if set, is called exactly once after Run returns, after the
	// host's slot has been released or handed to the next task. It is also
	// called for tasks that are abandoned because the pool closed.
	Done func()

	// Abandon, if set, is called with the executor's error for a task that
	// will never run, before its Done.
	Abandon func(err error)
}

// HostQueue limits how many tasks run at once for each host.
// Tasks over a host's limit wait in a FIFO queue for that host; hosts never
// wait on each other.
type HostQueue struct {
	exec  *Executor
	limit int
	logf  LogFunc

	mu    sync.Mutex
	hosts map[string]*hostState
}

// hostState is the admission record for one host.
type hostState struct {
	mu      sync.Mutex
	pending []Task
	active  int
}

// NewHostQueue creates a HostQueue that runs tasks on exec with at most
// limit tasks active per host.
func NewHostQueue(exec *Executor, limit int, logf LogFunc) *HostQueue {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &HostQueue{
		exec:  exec,
		limit: limit,
		logf:  logf,
		hosts: make(map[string]*hostState),
	}
}

// Submit runs task now if host is under its limit and queues it otherwise.
// It blocks while the executor is full. If the executor is closed, task and
// any tasks stranded behind it are abandoned: their Abandon and Done hooks
// run and the executor's error is returned.
func (q *HostQueue) Submit(host string, task Task) error {
	h := q.host(host)

	h.mu.Lock()
	if h.active >= q.limit {
		h.pending = append(h.pending, task)
		h.mu.Unlock()
		return nil
	}
	h.active++
	h.mu.Unlock()

	err := q.exec.Submit(func() { q.run(h, task) })
	if err == nil {
		return nil
	}

	h.mu.Lock()
	h.active--
	var stranded []Task
	if h.active == 0 {
		stranded = h.pending
		h.pending = nil
	}
	h.mu.Unlock()

	abandon(task, err)
	for _, t := range stranded {
		abandon(t, err)
	}
	return err
}

// Active returns the number of running tasks for host.
func (q *HostQueue) Active(host string) int {
	h := q.host(host)
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Pending returns the number of queued tasks for host.
func (q *HostQueue) Pending(host string) int {
	h := q.host(host)
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

func (q *HostQueue) host(host string) *hostState {
	q.mu.Lock()
	defer q.mu.Unlock()

	h, ok := q.hosts[host]
	if !ok {
		h = &hostState{}
		q.hosts[host] = h
	}
	return h
}

// run executes task and then every task handed over to it. The worker keeps
// the host's slot across the handoff, so active never exceeds the limit and
// the next task does not compete for a pool slot.
func (q *HostQueue) run(h *hostState, task Task) {
	for {
		next, ok := q.runOne(h, task)
		if !ok {
			return
		}
		task = next
	}
}

func (q *HostQueue) runOne(h *hostState, task Task) (next Task, ok bool) {
	defer func() {
		next, ok = q.handoff(h)
		finish(task)
	}()
	safeRun(task.Run, "download", q.logf)
	return Task{}, false
}

// handoff pops the host's next pending task, keeping the slot active,
// or releases the slot if nothing is waiting.
func (q *HostQueue) handoff(h *hostState) (Task, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.pending) == 0 {
		h.active--
		return Task{}, false
	}
	next := h.pending[0]
	h.pending[0] = Task{}
	h.pending = h.pending[1:]
	return next, true
}

func abandon(t Task, err error) {
	if t.Abandon != nil {
		t.Abandon(err)
	}
	finish(t)
}

func finish(t Task) {
	if t.Done != nil {
		t.Done()
	}
}
