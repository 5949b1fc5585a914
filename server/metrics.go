//go:build linux

/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mtrAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dbfront",
		Subsystem: "acceptor",
		Name:      "accepted_total",
		Help:      "Number of connections accepted on the listening socket.",
	})

	mtrRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dbfront",
		Subsystem: "acceptor",
		Name:      "rejected_total",
		Help:      "Number of connections closed immediately because the open connection bound was reached.",
	})

	mtrDispatchDrop = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dbfront",
		Subsystem: "acceptor",
		Name:      "dispatch_drop_total",
		Help:      "Number of accepted descriptors dropped because no worker queue could take them.",
	})

	mtrOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dbfront",
		Subsystem: "connections",
		Name:      "open",
		Help:      "Number of currently open client connections.",
	})
)
