package catch

import (
	"context"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/observation"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/queue"
)

// Batcher stages observations and flushes them to the index in batches.
type Batcher struct {
	client *Client
	queue  *queue.ObservationQueue
	update bool

	Added      int64
	Duplicates int64
}

// NewBatcher returns a batcher that inserts observations, or upserts them
// when update is set.
func NewBatcher(client *Client, update bool) *Batcher {
	return &Batcher{
		client: client,
		queue:  &queue.ObservationQueue{},
		update: update,
	}
}

func (b *Batcher) Client() *Client {
	return b.client
}

func (b *Batcher) Add(ctx context.Context, obs *observation.Observation) error {
	b.queue.Push(obs)
	if b.queue.Len() >= b.client.BatchSize() {
		return b.Flush(ctx)
	}
	return nil
}

// Flush submits all staged observations.
func (b *Batcher) Flush(ctx context.Context) error {
	observations := b.queue.Drain()
	if len(observations) == 0 {
		return nil
	}

	var added, duplicates int64
	var err error
	if b.update {
		added, duplicates, err = b.client.UpdateObservations(ctx, observations)
	} else {
		added, duplicates, err = b.client.AddObservations(ctx, observations)
	}

	b.Added += added
	b.Duplicates += duplicates
	if err != nil {
		return err
	}

	log.Debugf("flushed %d observations", len(observations))
	return nil
}
