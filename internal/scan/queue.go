package scan

// Queue is the ordered list of not-yet-classified file paths. It is built
// once at startup and mutated only by its owner; enumeration order is kept
// stable for the whole run.
type Queue struct {
	paths []string
}

func NewQueue(paths []string) *Queue {
	return &Queue{paths: paths}
}

// PopFront removes and returns the first pending path. The second return is
// false when the queue is empty.
func (q *Queue) PopFront() (string, bool) {
	if len(q.paths) == 0 {
		return "", false
	}
	p := q.paths[0]
	q.paths = q.paths[1:]
	return p, true
}

// PushFront puts a path back at the head, restoring the position of a file
// that was popped but not consumed.
func (q *Queue) PushFront(p string) {
	q.paths = append([]string{p}, q.paths...)
}

func (q *Queue) Len() int {
	return len(q.paths)
}
