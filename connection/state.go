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

package connection

import (
	"net"
)

// ConnState identifies a connection lifecycle event reported through
// the info callback.
type ConnState uint8

const (
	// ConnectionNew is reported once per accepted session.
	ConnectionNew ConnState = iota
	// ConnectionRead is reported when the socket is reported
	// read-ready, including on peer hangup.
	ConnectionRead
	// ConnectionWrite is reported when the socket is reported
	// write-ready, which only happens while it is armed for pending
	// output.
	ConnectionWrite
	// ConnectionClose is reported once when the session ends.
	ConnectionClose
)

// String returns the human-readable representation of the state.
// This method implements the fmt.Stringer interface.
func (s ConnState) String() string {
	switch s {
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Connection"
	case ConnectionWrite:
		return "Write Connection"
	case ConnectionClose:
		return "Close Connection"
	}

	return "unknown"
}

// FuncError receives asynchronous errors of the front-end: accept
// failures, dispatch drops, worker incidents. A nil function disables
// the callback.
type FuncError func(e ...error)

// FuncInfo receives connection lifecycle events. A nil function
// disables the callback.
type FuncInfo func(local, remote net.Addr, state ConnState)
