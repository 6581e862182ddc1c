package sim

import "sync"

const (
	commandQueueOccupancyMetricKey = "sim_command_queue_occupancy"
	commandQueueEnqueuedMetricKey  = "sim_command_queue_enqueued_total"
	commandQueueDrainedMetricKey   = "sim_command_queue_drained_total"
)

// Action is a deferred mutation executed on the simulation goroutine.
type Action func()

type telemetryMetrics interface {
	Add(string, uint64)
	Store(string, uint64)
}

// CommandQueue stages actions from any goroutine for the simulation
// goroutine. It is safe for concurrent producers and a single consumer.
// Actions from one producer keep their order; an action enqueued while a
// drain is in progress lands in exactly one of the two adjacent batches.
type CommandQueue struct {
	mu      sync.Mutex
	pending []Action
	spare   []Action
	metrics telemetryMetrics
}

// NewCommandQueue constructs an empty queue. capacity is a sizing hint for
// each of the two batches.
func NewCommandQueue(capacity int, metrics telemetryMetrics) *CommandQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandQueue{
		pending: make([]Action, 0, capacity),
		spare:   make([]Action, 0, capacity),
		metrics: metrics,
	}
}

// Enqueue stages an action. Nil actions are ignored and reported as false.
func (q *CommandQueue) Enqueue(action Action) bool {
	if q == nil || action == nil {
		return false
	}
	q.mu.Lock()
	q.pending = append(q.pending, action)
	count := len(q.pending)
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.Add(commandQueueEnqueuedMetricKey, 1)
		q.metrics.Store(commandQueueOccupancyMetricKey, uint64(count))
	}
	return true
}

// DrainAndClear returns every staged action in enqueue order and leaves the
// queue empty. The returned slice stays valid until the next drain.
func (q *CommandQueue) DrainAndClear() []Action {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	batch := q.pending
	clear(q.spare)
	q.pending = q.spare[:0]
	q.spare = batch
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.Add(commandQueueDrainedMetricKey, uint64(len(batch)))
		q.metrics.Store(commandQueueOccupancyMetricKey, 0)
	}
	if len(batch) == 0 {
		return nil
	}
	return batch
}

// Len reports the number of staged actions.
func (q *CommandQueue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
