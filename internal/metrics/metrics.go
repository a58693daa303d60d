package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PagesFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parley_pages_fetched_total",
		Help: "Total number of message pages merged into the cache",
	})
	FetchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_fetch_failures_total",
		Help: "Total number of failed page fetches",
	}, []string{"kind"})
	MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_mutations_total",
		Help: "Total number of room/participant mutations",
	}, []string{"op", "outcome"})
	LiveMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parley_live_messages_total",
		Help: "Total number of messages received over the live feed",
	})
)

func init() {
	prometheus.MustRegister(PagesFetchedTotal, FetchFailuresTotal, MutationsTotal, LiveMessagesTotal)
}
