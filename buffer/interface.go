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

// Package buffer implements the fixed-capacity byte buffer backing the
// per-connection read and write paths of the socket front-end.
//
// A Buffer is allocated once and never reallocates: overflow is the
// caller's concern (the connection state machine flushes or compacts
// before appending). The cursor/filled pair always satisfies
// 0 <= cursor <= filled <= capacity.
package buffer

// DefaultSize is the capacity used for per-socket buffers when no
// explicit size is given.
const DefaultSize = 8 * 1024

// New returns a Buffer with the given fixed capacity. A size lower or
// equal to zero falls back to DefaultSize.
func New(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}

	return &Buffer{
		dat: make([]byte, size),
	}
}
