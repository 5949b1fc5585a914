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

import liberr "github.com/nabbar/golib/errors"

const (
	ErrorInvalidHandler liberr.CodeError = iota + liberr.MinAvailable + 160
	ErrorInvalidAddress
	ErrorServerRunning
	ErrorServerBind
	ErrorServerListen
	ErrorServerWakePipe
	ErrorServerAccept
	ErrorServerMaxConn
	ErrorServerDispatch
	ErrorServerStop
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorInvalidHandler)
	liberr.RegisterIdFctMessage(ErrorInvalidHandler, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorInvalidHandler:
		return "given protocol handler factory is empty"
	case ErrorInvalidAddress:
		return "given listening address cannot be resolved"
	case ErrorServerRunning:
		return "server is still running"
	case ErrorServerBind:
		return "cannot bind the listening address"
	case ErrorServerListen:
		return "cannot create the listening socket"
	case ErrorServerWakePipe:
		return "cannot create the acceptor wake pipe"
	case ErrorServerAccept:
		return "accept has failed on the listening socket"
	case ErrorServerMaxConn:
		return "open connection bound reached, connection closed"
	case ErrorServerDispatch:
		return "cannot dispatch the accepted connection to any worker"
	case ErrorServerStop:
		return "server has not stopped before the given deadline"
	}

	return ""
}
