// Package metrics holds the Prometheus collectors for cashback calculations
// and redemptions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cashback"

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	registry *prometheus.Registry

	calculations *prometheus.CounterVec
	redemptions  prometheus.Counter
	redeemed     prometheus.Counter
	unallocated  prometheus.Counter
	candidates   prometheus.Histogram
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Cashback calculations by outcome.",
		}, []string{"outcome"}),
		redemptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Redemption batches applied.",
		}),
		redeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redeemed_amount_total",
			Help:      "Amount allocated across monthly balances by redemptions.",
		}),
		unallocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemption_unallocated_amount_total",
			Help:      "Requested redemption amount left over after every balance was settled.",
		}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_candidates",
			Help:      "Number of card/rule candidates returned per recommendation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.calculations, r.redemptions, r.redeemed, r.unallocated, r.candidates,
	)
	return r
}

func (r *Recorder) Calculation(blocked bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if blocked {
		outcome = "blocked"
	}
	r.calculations.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Redemption(allocated, unallocated float64) {
	if r == nil {
		return
	}
	r.redemptions.Inc()
	if allocated > 0 {
		r.redeemed.Add(allocated)
	}
	if unallocated > 0 {
		r.unallocated.Add(unallocated)
	}
}

func (r *Recorder) Candidates(n int) {
	if r == nil {
		return
	}
	r.candidates.Observe(float64(n))
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
