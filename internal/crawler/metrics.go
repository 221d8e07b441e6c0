package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mediadex",
		Subsystem: "crawler",
		Name:      "pages_fetched_total",
		Help:      "Index pages fetched and parsed.",
	})
	filesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mediadex",
		Subsystem: "crawler",
		Name:      "files_discovered_total",
		Help:      "Playable files accepted by the extension filter.",
	})
	branchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mediadex",
		Subsystem: "crawler",
		Name:      "branch_errors_total",
		Help:      "Non-root fetch failures where the branch was abandoned.",
	})
)
