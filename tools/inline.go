/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"regexp"

	"github.com/Comcast/rulegraph/util"
)

var inlinePattern = regexp.MustCompile(`(?s)(.*?)(%inline *\("([^"]*)"\))`)

// MaxInlineDepth limits how deeply inlined files can inline other
// files.
var MaxInlineDepth = 8

// Inline replaces '%inline("NAME")' with f(NAME).
//
// Useful for assembling rule files from pieces:
//
//	0: 8 11
//	%inline("letters.txt")
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	i := 0
	acc := make([]byte, 0, len(bs))
	for {
		part := inlinePattern.FindSubmatch(bs[i:])
		if part == nil {
			acc = append(acc, bs[i:]...)
			break
		}
		i += len(part[0])
		acc = append(acc, part[1]...)
		replacement, err := f(string(part[3]))
		if err != nil {
			return nil, err
		}
		util.Logf("tools.Inline %s: %d bytes", part[3], len(replacement))
		acc = append(acc, replacement...)
	}

	return acc, nil
}

// ReadFileWithInlines is a replacement for ioutil.ReadFile that
// Inline()s relative to the file's directory.  Inlined files can
// inline other files (relative to their own directories) up to
// MaxInlineDepth.
func ReadFileWithInlines(filename string) ([]byte, error) {
	return readFileWithInlines(filename, 0)
}

func readFileWithInlines(filename string, depth int) ([]byte, error) {
	if MaxInlineDepth < depth {
		return nil, fmt.Errorf("inlining %s: too deep (%d)", filename, depth)
	}
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(filename)
	return Inline(bs, func(name string) ([]byte, error) {
		return readFileWithInlines(filepath.Join(dir, name), depth+1)
	})
}

// ReadAllWithInlines is a replacement for ioutil.ReadAll that
// Inline()s relative to the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return Inline(bs, func(name string) ([]byte, error) {
		return readFileWithInlines(filepath.Join(dir, name), 1)
	})
}
