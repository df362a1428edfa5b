// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFileSource supplies raw values from a TOML content based file.
// Nested tables are flattened to dotted keys, scalar leaves are
// stringified (see also [JSONFileSource], [YAMLFileSource]).
// The location of the file is given as parameter.
func TOMLFileSource(filePath string) Source {
	return SourceFunc(func() (map[string]string, error) {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return TOMLReaderSource(f).Load()
	})
}

// TOMLReaderSource supplies raw values from TOML content read
// from an [io.Reader].
func TOMLReaderSource(reader io.Reader) Source {
	return SourceFunc(func() (map[string]string, error) {
		if seekReader, ok := reader.(io.Seeker); ok {
			_, _ = seekReader.Seek(0, io.SeekStart) // move to the beginning in case of a re-load needed.
		}
		var document map[string]any
		dec := toml.NewDecoder(reader)
		if err := dec.Decode(&document); err != nil {
			return nil, err
		}

		return flattenToStringMap(document, defaultFlatKeySeparator)
	})
}
