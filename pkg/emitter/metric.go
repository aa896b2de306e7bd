/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package emitter

import (
	"strconv"

	"github.com/caiflower/http-utils/global/env"
	"github.com/prometheus/client_golang/prometheus"
)

type Metric struct {
	emitTotal      *prometheus.CounterVec
	emitFailed     *prometheus.CounterVec
	bodyBytesTotal *prometheus.CounterVec
	abortedTotal   prometheus.Counter
}

// NewMetric registerer 为 nil 时注册到 prometheus 默认的 registry
func NewMetric(registerer prometheus.Registerer) *Metric {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := prometheus.Labels{"ip": env.GetLocalHostIP()}

	metric := &Metric{
		emitTotal:      prometheus.NewCounterVec(prometheus.CounterOpts{Name: "response_emit_total", Help: "response_emit_total counter", ConstLabels: constLabels}, []string{"code", "mode"}),
		emitFailed:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "response_emit_failed_total", Help: "response_emit_failed_total counter", ConstLabels: constLabels}, []string{"code"}),
		bodyBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "response_body_bytes_total", Help: "response_body_bytes_total counter", ConstLabels: constLabels}, []string{"mode"}),
		abortedTotal:   prometheus.NewCounter(prometheus.CounterOpts{Name: "response_emit_aborted_total", Help: "response_emit_aborted_total counter", ConstLabels: constLabels}),
	}

	registerer.MustRegister(metric.emitTotal, metric.emitFailed, metric.bodyBytesTotal, metric.abortedTotal)

	return metric
}

func (m *Metric) save(code int, mode string, written int64, aborted bool) {
	m.emitTotal.WithLabelValues(strconv.Itoa(code), mode).Inc()
	m.bodyBytesTotal.WithLabelValues(mode).Add(float64(written))
	if aborted {
		m.abortedTotal.Inc()
	}
}

func (m *Metric) failed(code int) {
	m.emitFailed.WithLabelValues(strconv.Itoa(code)).Inc()
}
