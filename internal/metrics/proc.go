// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var procSignals = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dayloop_proc_signal_total",
	Help: "Signals delivered to encoder process groups by result",
}, []string{"signal", "result"})

// IncProcSignal records a signal delivery attempt ("sent", "esrch", "error").
func IncProcSignal(signal, result string) {
	procSignals.WithLabelValues(signal, result).Inc()
}
