package core

// Task is the unit of work (Closure). It is owned by the queue from the
// moment it is submitted until a worker dequeues it or Stop discards it.
type Task func()

// TaskItem pairs a task with its abort hook. The hook resolves the
// task's result handle as cancelled when the item is discarded by a
// stop-drain instead of being executed.
type TaskItem struct {
	Run   Task
	Abort func()
}

func (item TaskItem) abort() {
	if item.Abort != nil {
		item.Abort()
	}
}
