// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv_test

import (
	"bytes"
	"testing"

	"github.com/actforgood/xenv"
)

var jsonExpectedEnviron = map[string]string{
	"json_title": "app",
	"db.host":    "localhost",
	"db.port":    "5432",
}

func TestJSONReaderSource(t *testing.T) {
	t.Parallel()

	t.Run("success - objects are flattened, scalars stringified", testJSONReaderSourceWithValidContent)
	t.Run("error - invalid json content", testJSONReaderSourceWithInvalidContent)
	t.Run("error - array leaves are not representable", testJSONReaderSourceWithArrayLeaf)
}

func testJSONReaderSourceWithValidContent(t *testing.T) {
	t.Parallel()

	// arrange
	var (
		content = `{
  "json_title": "app",
  "db": {
    "host": "localhost",
    "port": 5432
  }
}`
		reader  = bytes.NewReader([]byte(content))
		subject = xenv.JSONReaderSource(reader)
	)

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, err)
	assertEqual(t, jsonExpectedEnviron, environ)
}

func testJSONReaderSourceWithInvalidContent(t *testing.T) {
	t.Parallel()

	// arrange
	var (
		reader  = bytes.NewReader([]byte(`{"invalid json`))
		subject = xenv.JSONReaderSource(reader)
	)

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, environ)
	assertNotNil(t, err)
}

func testJSONReaderSourceWithArrayLeaf(t *testing.T) {
	t.Parallel()

	// arrange
	var (
		reader  = bytes.NewReader([]byte(`{"shopping_list": ["bread", "milk"]}`))
		subject = xenv.JSONReaderSource(reader)
	)

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, environ)
	assertNotNil(t, err)
}

func TestJSONFileSource(t *testing.T) {
	t.Parallel()

	t.Run("success - valid file", func(t *testing.T) {
		t.Parallel()

		// arrange
		subject := xenv.JSONFileSource("testdata/config.json")

		// act
		environ, err := subject.Load()

		// assert
		assertNil(t, err)
		assertEqual(t, jsonExpectedEnviron, environ)
	})

	t.Run("error - file not found", func(t *testing.T) {
		t.Parallel()

		// arrange
		subject := xenv.JSONFileSource("testdata/path/does/not/exist/config.json")

		// act
		environ, err := subject.Load()

		// assert
		assertNil(t, environ)
		assertNotNil(t, err)
	})
}
