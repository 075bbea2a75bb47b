// Package metrics counts what happened during one collection batch.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Thread outcomes.
const (
	ThreadCollected = "collected"
	ThreadFiltered  = "filtered"
	ThreadMalformed = "malformed"
	ThreadFailed    = "failed"
)

const namespace = "threadcorpus"

// Batch holds the collectors of one run on a private registry, so a push
// carries exactly this run. It satisfies forest.Observer.
type Batch struct {
	registry   *prometheus.Registry
	threads    *prometheus.CounterVec
	stubs      *prometheus.CounterVec
	utterances prometheus.Counter
	width      prometheus.Gauge
	duration   prometheus.Gauge
}

func NewBatch() *Batch {
	b := &Batch{
		registry: prometheus.NewRegistry(),
		threads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "threads_total",
			Help:      "Threads seen by the collector, by outcome.",
		}, []string{"outcome"}),
		stubs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stubs_total",
			Help:      "Pagination stubs met while flattening, by outcome.",
		}, []string{"outcome"}),
		utterances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_total",
			Help:      "Utterances added to the corpus.",
		}),
		width: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_width",
			Help:      "Number of utterance columns of the corpus.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the batch.",
		}),
	}
	b.registry.MustRegister(b.threads, b.stubs, b.utterances, b.width, b.duration)
	return b
}

func (b *Batch) Registry() *prometheus.Registry {
	return b.registry
}

func (b *Batch) StubResolved() { b.stubs.WithLabelValues("resolved").Inc() }
func (b *Batch) StubDropped()  { b.stubs.WithLabelValues("dropped").Inc() }
func (b *Batch) StubFailed()   { b.stubs.WithLabelValues("failed").Inc() }

func (b *Batch) Thread(outcome string) {
	b.threads.WithLabelValues(outcome).Inc()
}

func (b *Batch) Utterances(n int) {
	b.utterances.Add(float64(n))
}

func (b *Batch) Finish(width int, elapsed time.Duration) {
	b.width.Set(float64(width))
	b.duration.Set(elapsed.Seconds())
}

// Push sends the batch to a Pushgateway, replacing the previous push of job.
func (b *Batch) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(b.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
