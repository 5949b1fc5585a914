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

// buffer_test.go validates the fixed-capacity buffer invariants:
// cursor and filled length ordering, overflow and underflow refusal,
// and the compact operation used by the connection read path.
package buffer_test

import (
	"bytes"

	libbuf "github.com/nabbar/dbfront/buffer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Buffer", func() {
	Context("creation", func() {
		It("should use the given capacity", func() {
			buf := libbuf.New(16)
			Expect(buf.Capacity()).To(Equal(16))
			Expect(buf.Remaining()).To(Equal(0))
			Expect(buf.Free()).To(Equal(16))
		})

		It("should fall back to the default capacity", func() {
			Expect(libbuf.New(0).Capacity()).To(Equal(libbuf.DefaultSize))
			Expect(libbuf.New(-5).Capacity()).To(Equal(libbuf.DefaultSize))
		})
	})

	Context("append and consume", func() {
		var buf *libbuf.Buffer

		BeforeEach(func() {
			buf = libbuf.New(8)
		})

		It("should track remaining and free", func() {
			Expect(buf.Append([]byte("abc"))).To(Succeed())
			Expect(buf.Remaining()).To(Equal(3))
			Expect(buf.Free()).To(Equal(5))

			Expect(buf.Consume(2)).To(Succeed())
			Expect(buf.Remaining()).To(Equal(1))
			Expect(buf.Bytes()).To(Equal([]byte("c")))
		})

		It("should refuse to append past the capacity", func() {
			Expect(buf.Append(bytes.Repeat([]byte{'x'}, 9))).ToNot(Succeed())
			Expect(buf.Append(bytes.Repeat([]byte{'x'}, 8))).To(Succeed())
			Expect(buf.Append([]byte{'x'})).ToNot(Succeed())
		})

		It("should refuse to consume more than buffered", func() {
			Expect(buf.Append([]byte("ab"))).To(Succeed())
			Expect(buf.Consume(3)).ToNot(Succeed())
			Expect(buf.Consume(-1)).ToNot(Succeed())
			Expect(buf.Consume(2)).To(Succeed())
		})

		It("should rewind to the front once fully consumed", func() {
			Expect(buf.Append([]byte("abcdefgh"))).To(Succeed())
			Expect(buf.Consume(8)).To(Succeed())
			Expect(buf.Free()).To(Equal(8))
			Expect(buf.Append([]byte("ij"))).To(Succeed())
			Expect(buf.Bytes()).To(Equal([]byte("ij")))
		})
	})

	Context("direct tail writes", func() {
		It("should expose the tail and grow by the written count", func() {
			buf := libbuf.New(8)
			n := copy(buf.Tail(), "hello")
			Expect(buf.Grow(n)).To(Succeed())
			Expect(buf.Bytes()).To(Equal([]byte("hello")))
		})

		It("should refuse to grow past the capacity", func() {
			buf := libbuf.New(4)
			Expect(buf.Grow(5)).ToNot(Succeed())
			Expect(buf.Grow(-1)).ToNot(Succeed())
		})
	})

	Context("copy out", func() {
		It("should copy exactly and advance the cursor", func() {
			buf := libbuf.New(8)
			Expect(buf.Append([]byte("abcdef"))).To(Succeed())

			out := make([]byte, 4)
			Expect(buf.CopyOut(out)).To(Succeed())
			Expect(out).To(Equal([]byte("abcd")))
			Expect(buf.Bytes()).To(Equal([]byte("ef")))
		})

		It("should refuse when not enough is buffered", func() {
			buf := libbuf.New(8)
			Expect(buf.Append([]byte("ab"))).To(Succeed())
			Expect(buf.CopyOut(make([]byte, 3))).ToNot(Succeed())
		})
	})

	Context("compact", func() {
		It("should move unconsumed bytes to the front", func() {
			buf := libbuf.New(8)
			Expect(buf.Append([]byte("abcdefgh"))).To(Succeed())
			Expect(buf.Consume(6)).To(Succeed())
			Expect(buf.Free()).To(Equal(0))

			buf.Compact()
			Expect(buf.Remaining()).To(Equal(2))
			Expect(buf.Free()).To(Equal(6))
			Expect(buf.Bytes()).To(Equal([]byte("gh")))
		})

		It("should be a no-op on a fresh buffer", func() {
			buf := libbuf.New(8)
			buf.Compact()
			Expect(buf.Remaining()).To(Equal(0))
			Expect(buf.Free()).To(Equal(8))
		})
	})

	Context("reset", func() {
		It("should return cursor and filled length to zero", func() {
			buf := libbuf.New(8)
			Expect(buf.Append([]byte("abc"))).To(Succeed())
			Expect(buf.Consume(1)).To(Succeed())

			buf.Reset()
			Expect(buf.Remaining()).To(Equal(0))
			Expect(buf.Free()).To(Equal(8))
		})
	})
})
