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

package handler

import (
	"strings"
)

// Status is what a handler reports back to the connection state
// machine after one Process invocation.
type Status uint8

const (
	// NeedRead means the handler is blocked waiting for more inbound
	// bytes; the connection re-arms for read-readiness.
	NeedRead Status = iota
	// NeedWrite means the handler produced output that could not be
	// flushed; the connection re-arms for write-readiness.
	NeedWrite
	// Continue means progress was made and Process must be invoked
	// again before yielding to the reactor.
	Continue
	// Done ends the session normally: pending output is drained, then
	// the connection is closed.
	Done
	// Error ends the session on a protocol failure: the connection is
	// closed without affecting any other session.
	Error
)

// Uint8 converts the Status to its underlying uint8 value.
func (s Status) Uint8() uint8 {
	return uint8(s)
}

// String returns the full human-readable representation of the Status.
// The returned string can be parsed back using Parse.
// This method implements the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case NeedRead:
		return "Need Read"
	case NeedWrite:
		return "Need Write"
	case Continue:
		return "Continue"
	case Done:
		return "Done"
	case Error:
		return "Error"
	}

	return "unknown"
}

// Code returns the short code representation of the Status.
func (s Status) Code() string {
	switch s {
	case NeedRead:
		return "rd"
	case NeedWrite:
		return "wr"
	case Continue:
		return "go"
	case Done:
		return "ok"
	case Error:
		return "ko"
	}

	return ""
}

// Parse returns the Status matching the given string or code,
// case-insensitively. An unknown input maps to Error.
func Parse(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "need read", "rd":
		return NeedRead
	case "need write", "wr":
		return NeedWrite
	case "continue", "go":
		return Continue
	case "done", "ok":
		return Done
	}

	return Error
}
