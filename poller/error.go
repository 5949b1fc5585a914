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

package poller

import liberr "github.com/nabbar/golib/errors"

const (
	ErrorPollerCreate liberr.CodeError = iota + liberr.MinAvailable + 80
	ErrorPollerRegister
	ErrorPollerModify
	ErrorPollerUnregister
	ErrorPollerWait
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorPollerCreate)
	liberr.RegisterIdFctMessage(ErrorPollerCreate, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorPollerCreate:
		return "cannot create event demultiplexer"
	case ErrorPollerRegister:
		return "cannot register descriptor with event demultiplexer"
	case ErrorPollerModify:
		return "cannot update descriptor readiness mask"
	case ErrorPollerUnregister:
		return "cannot remove descriptor from event demultiplexer"
	case ErrorPollerWait:
		return "event demultiplexer wait has failed"
	}

	return ""
}
