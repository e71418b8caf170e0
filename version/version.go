// @license
// Copyright (C) 2025  Dinko Korunic
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package version

import (
	"runtime/debug"
	"strings"
)

const unknownVersion = "(devel)"

// ReadVersion returns "path@version" for a dependency of the running binary, or just path when it is not a
// dependency.
func ReadVersion(path string) string {
	i, ok := debug.ReadBuildInfo()
	if ok {
		if i.Main.Path == path {
			return join(path, i.Main.Version)
		}

		for _, d := range i.Deps {
			if d.Path == path {
				if d.Replace != nil {
					return join(path, d.Replace.Version)
				}

				return join(path, d.Version)
			}
		}
	}

	return path
}

// ClientName builds the client identifier sent to WebUntis on login, e.g. "untis-bot/v1.2.0". Untagged builds
// fall back to the main module version.
func ClientName(name, tag string) string {
	if tag == "" {
		if i, ok := debug.ReadBuildInfo(); ok {
			tag = i.Main.Version
		}
	}

	if tag == "" || tag == unknownVersion {
		return name
	}

	return strings.Join([]string{name, tag}, "/")
}

func join(path, v string) string {
	if v == "" {
		v = unknownVersion
	}

	return strings.Join([]string{path, v}, "@")
}
