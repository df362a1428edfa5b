// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv_test

import (
	"reflect"
	"testing"
)

// assertEqual checks if the two provided parameters are equal.
// Returns successful assertion status.
func assertEqual(t *testing.T, expected, actual any) bool {
	t.Helper()
	if reflect.DeepEqual(expected, actual) {
		return true
	}
	t.Errorf("expected [%+v], but got [%+v]", expected, actual)

	return false
}

// assertNil checks if provided parameter is nil.
// Returns successful assertion status.
func assertNil(t *testing.T, actual any) bool {
	t.Helper()
	if isNil(actual) {
		return true
	}
	t.Errorf("expected nil, but got [%+v]", actual)

	return false
}

// assertNotNil checks if provided parameter is not nil.
// Returns successful assertion status.
func assertNotNil(t *testing.T, actual any) bool {
	t.Helper()
	if !isNil(actual) {
		return true
	}
	t.Error("expected not nil, but got nil")

	return false
}

// assertTrue checks if provided parameter is true.
// Returns successful assertion status.
func assertTrue(t *testing.T, actual bool) bool {
	t.Helper()
	if actual {
		return true
	}
	t.Error("expected true, but got false")

	return false
}

// assertFalse checks if provided parameter is false.
// Returns successful assertion status.
func assertFalse(t *testing.T, actual bool) bool {
	t.Helper()
	if !actual {
		return true
	}
	t.Error("expected false, but got true")

	return false
}

// isNil covers also the interface-holding-typed-nil case.
func isNil(subject any) bool {
	if subject == nil {
		return true
	}
	value := reflect.ValueOf(subject)
	switch value.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Pointer, reflect.Slice:
		return value.IsNil()
	}

	return false
}
