package queue

import (
	"sync"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/observation"
)

// ObservationQueue stages observations between label processing and a
// database flush.
type ObservationQueue struct {
	sync.Mutex
	queue []*observation.Observation
}

func (q *ObservationQueue) Len() int {
	q.Lock()
	defer q.Unlock()

	return len(q.queue)
}

func (q *ObservationQueue) Push(obs *observation.Observation) {
	q.Lock()
	defer q.Unlock()

	q.queue = append(q.queue, obs)
}

// Drain removes and returns all queued observations.
func (q *ObservationQueue) Drain() []*observation.Observation {
	q.Lock()
	defer q.Unlock()

	items := q.queue
	q.queue = nil
	return items
}

func (q *ObservationQueue) Clean() {
	q.Lock()
	defer q.Unlock()

	q.queue = nil
}
