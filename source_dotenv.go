// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"io"
	"os"

	"github.com/joho/godotenv"
)

// DotEnvFileSource supplies raw values from a .env content based file.
// The location of the file is given as parameter.
func DotEnvFileSource(filePath string) Source {
	return SourceFunc(func() (map[string]string, error) {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return DotEnvReaderSource(f).Load()
	})
}

// DotEnvReaderSource supplies raw values from .env content read
// from an [io.Reader].
func DotEnvReaderSource(reader io.Reader) Source {
	return SourceFunc(func() (map[string]string, error) {
		if seekReader, ok := reader.(io.Seeker); ok {
			_, _ = seekReader.Seek(0, io.SeekStart) // move to the beginning in case of a re-load needed.
		}

		return godotenv.Parse(reader)
	})
}
