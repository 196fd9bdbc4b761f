package runner

import "sync"

// Queue holds deferred snippets until the runner drains them. It is safe to
// enqueue from inside a submission while the runner is draining.
type Queue struct {
	mu    sync.Mutex
	items []string
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue adds already-final code to the back of the queue.
func (q *Queue) Enqueue(code string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, code)
}

// Dequeue removes the oldest snippet, ok is false if the queue is empty.
func (q *Queue) Dequeue() (code string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	code = q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return code, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear discards everything still queued.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
