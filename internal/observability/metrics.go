/*
 * metrics.go, part of cifxyz.
 *
 * Copyright 2025 the cifxyz authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/cifxyz/convert"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cifxyz",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cifxyz",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cifxyz",
			Subsystem: "convert",
			Name:      "conversions_total",
			Help:      "Conversions by direction and outcome.",
		},
		[]string{"node", "direction", "outcome"},
	)
	conversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cifxyz",
			Subsystem: "convert",
			Name:      "conversion_duration_seconds",
			Help:      "Conversion duration in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"node", "direction", "outcome"},
	)
)

// RegisterMetrics registers the collectors with the default Prometheus
// registry. Calling it more than once is harmless.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, conversions, conversionDuration)
	})
}

// RecordHTTPRequest counts a request served by node and observes its duration.
func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordConversion counts a conversion by node with the given outcome
// and observes its duration.
func RecordConversion(node string, d convert.Direction, outcome string, duration time.Duration) {
	RegisterMetrics()
	conversions.WithLabelValues(node, d.String(), outcome).Inc()
	conversionDuration.WithLabelValues(node, d.String(), outcome).Observe(duration.Seconds())
}

// ConversionObserver returns a convert.Observer that records the conversions of node.
func ConversionObserver(node string) convert.Observer {
	return func(d convert.Direction, outcome string, elapsed time.Duration) {
		RecordConversion(node, d, outcome, elapsed)
	}
}
