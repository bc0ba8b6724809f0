package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisions counts ownership checks by resource kind and outcome (allow/deny).
	AuthzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workfolio_authz_decisions_total",
		Help: "Ownership authorization decisions by resource and outcome",
	}, []string{"resource", "outcome"})

	// ConsistencyFailures counts best-effort steps that left orphaned records behind.
	ConsistencyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workfolio_consistency_failures_total",
		Help: "Cascade and link steps that failed and were recorded for reconciliation",
	}, []string{"operation"})

	// ConsistencyRepairs counts inconsistencies resolved by the reconciliation worker.
	ConsistencyRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workfolio_consistency_repairs_total",
		Help: "Inconsistency records resolved by the worker",
	}, []string{"operation"})

	// StoreTimeouts counts repository calls that exceeded the configured deadline.
	StoreTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workfolio_store_timeouts_total",
		Help: "Repository calls that exceeded DB_TIMEOUT_MS",
	}, []string{"table"})
)
