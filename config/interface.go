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

// Package config exposes the socket front-end configuration model with
// validation and viper loading.
package config

import (
	"runtime"

	libdur "github.com/nabbar/golib/duration"
	libptc "github.com/nabbar/golib/network/protocol"
)

const (
	// DefaultQueueSize is the per-worker hand-off queue capacity used
	// when the configuration leaves QueueSize at zero.
	DefaultQueueSize = 1024

	// DefaultBacklog is the listen backlog used when the configuration
	// leaves Backlog at zero.
	DefaultBacklog = 512
)

// Server describes one socket front-end instance.
type Server struct {
	// Network is the listening protocol. Only stream protocols of the
	// tcp family are accepted.
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`

	// Address is the local listening address like ip:port or host:port.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"required"`

	// NbWorker is the number of I/O worker threads. Zero selects the
	// hardware parallelism of the host.
	NbWorker int `mapstructure:"nb_worker" json:"nb_worker" yaml:"nb_worker" toml:"nb_worker" validate:"omitempty,gte=0,lte=1024"`

	// QueueSize is the per-worker hand-off queue capacity. Zero selects
	// DefaultQueueSize.
	QueueSize int `mapstructure:"queue_size" json:"queue_size" yaml:"queue_size" toml:"queue_size" validate:"omitempty,gte=0"`

	// MaxConn bounds the number of simultaneous open sockets. Above the
	// bound, new connections are accepted and closed immediately. Zero
	// means no bound.
	MaxConn int64 `mapstructure:"max_conn" json:"max_conn" yaml:"max_conn" toml:"max_conn" validate:"omitempty,gte=0"`

	// Backlog is the listen queue length requested from the kernel.
	// Zero selects DefaultBacklog; an explicit value below 128 is
	// rejected by validation.
	Backlog int `mapstructure:"backlog" json:"backlog" yaml:"backlog" toml:"backlog" validate:"omitempty,gte=128"`

	// ConIdleTimeout closes a connection with no traffic for longer
	// than this duration. Zero disables the idle sweep.
	ConIdleTimeout libdur.Duration `mapstructure:"con_idle_timeout" json:"con_idle_timeout" yaml:"con_idle_timeout" toml:"con_idle_timeout"`
}

// Workers returns the effective worker count.
func (o Server) Workers() int {
	if o.NbWorker > 0 {
		return o.NbWorker
	}

	return runtime.GOMAXPROCS(0)
}

// Queue returns the effective hand-off queue capacity.
func (o Server) Queue() int {
	if o.QueueSize > 0 {
		return o.QueueSize
	}

	return DefaultQueueSize
}

// ListenBacklog returns the effective listen backlog.
func (o Server) ListenBacklog() int {
	if o.Backlog > 0 {
		return o.Backlog
	}

	return DefaultBacklog
}
