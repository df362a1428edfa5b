// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"encoding/json"
	"io"
	"os"
)

// JSONFileSource supplies raw values from a JSON content based file.
// Nested objects are flattened to dotted keys, scalar leaves are
// stringified (see also [YAMLFileSource], [TOMLFileSource]).
// The location of the file is given as parameter.
func JSONFileSource(filePath string) Source {
	return SourceFunc(func() (map[string]string, error) {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return JSONReaderSource(f).Load()
	})
}

// JSONReaderSource supplies raw values from JSON content read
// from an [io.Reader].
func JSONReaderSource(reader io.Reader) Source {
	return SourceFunc(func() (map[string]string, error) {
		if seekReader, ok := reader.(io.Seeker); ok {
			_, _ = seekReader.Seek(0, io.SeekStart) // move to the beginning in case of a re-load needed.
		}
		var document map[string]any
		dec := json.NewDecoder(reader)
		if err := dec.Decode(&document); err != nil {
			return nil, err
		}

		return flattenToStringMap(document, defaultFlatKeySeparator)
	})
}
