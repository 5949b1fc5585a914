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

package config

import (
	libmap "github.com/mitchellh/mapstructure"
	liberr "github.com/nabbar/golib/errors"
	spfvpr "github.com/spf13/viper"
)

// NewViper loads a Server configuration from the given viper instance
// under the given key. Protocol and duration fields are decoded from
// their text form through their TextUnmarshaler implementation.
func NewViper(vpr *spfvpr.Viper, key string) (Server, liberr.Error) {
	var cfg Server

	if vpr == nil {
		return cfg, ErrorParamEmpty.Error(nil)
	}

	err := vpr.UnmarshalKey(key, &cfg, spfvpr.DecodeHook(libmap.ComposeDecodeHookFunc(
		libmap.StringToTimeDurationHookFunc(),
		libmap.TextUnmarshallerHookFunc(),
	)))

	if err != nil {
		return cfg, ErrorConfigUnmarshal.Error(err)
	}

	return cfg, nil
}
