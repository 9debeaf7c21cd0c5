package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/odooqa/qa-system/internal/api/metrics"
	"github.com/odooqa/qa-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes purge jobs to a fixed set of workers using consistent
// hashing on the question id, so two jobs for one question never run at once.
type Dispatcher struct {
	workers []chan ports.PurgeJob
	service ports.PurgeService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.PurgeQueue = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.PurgeService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PurgeJob, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PurgeJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a job to the worker responsible for its question.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.PurgeJob) {
	idx := d.shardIndex(job.QuestionID)
	d.workers[idx] <- job
	metrics.PurgeQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a question id deterministically to a worker index.
func (d *Dispatcher) shardIndex(questionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(questionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PurgeJob) {
	defer d.wg.Done()
	depth := metrics.PurgeQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))

			start := time.Now()
			err := d.service.Purge(ctx, job)
			result := "ok"
			if err != nil {
				result = "error"
				d.log.Error().Err(err).
					Str("question_id", job.QuestionID).
					Int("worker_id", id).
					Msg("purge failed")
			}
			metrics.PurgeDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		}
	}
}
