package core

// PoolStats represents a consistent snapshot of a worker pool's
// runtime state. All fields are read under the pool's shared lock.
type PoolStats struct {
	Name      string
	Workers   int
	Target    int
	Queued    int
	Active    int
	Received  uint64
	Completed uint64
	Aborted   uint64
	Paused    bool
	Stopping  bool
}
