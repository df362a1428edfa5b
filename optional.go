// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"reflect"
	"strings"
)

// analyzeOptional inspects a declared field type and reports whether it is
// an optional variant, unwrapping it if so.
//
// A pointer field is the optional marker: *T yields (T, true), and the
// engine assigns nil to it when no value is available or when the raw value
// spells absence (see isAbsentValue).
//
// Exactly one level is unwrapped. A **T field yields (*T, true) whose inner
// type, like any other composite (interfaces included), is treated as a
// single opaque type requiring its own explicit loader - there is no
// implicit per-arm dispatch.
func analyzeOptional(declaredType reflect.Type) (reflect.Type, bool) {
	if declaredType.Kind() == reflect.Pointer {
		return declaredType.Elem(), true
	}

	return declaredType, false
}

// isAbsentValue checks whether a raw string spells absence of value
// for an optional field: the empty string, or "none" in any casing.
func isAbsentValue(raw string) bool {
	return raw == "" || strings.EqualFold(raw, "none")
}
