// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import "strings"

// FilterSource decorates another source to keep only the key-values the
// given predicate allows. Typically used to select an application's
// namespace out of the whole process environment:
//
//	src := xenv.FilterSource(xenv.EnvSource(), xenv.KeyPrefixFilter("APP_"))
func FilterSource(source Source, allow func(key, value string) bool) Source {
	return SourceFunc(func() (map[string]string, error) {
		environ, err := source.Load()
		if err != nil {
			return environ, err
		}

		for key, value := range environ {
			if !allow(key, value) {
				delete(environ, key)
			}
		}

		return environ, nil
	})
}

// KeyPrefixFilter allows keys having given prefix.
func KeyPrefixFilter(prefix string) func(key, _ string) bool {
	return func(key, _ string) bool {
		return strings.HasPrefix(key, prefix)
	}
}

// StripKeyPrefix decorates another source to remove given prefix from all
// keys that carry it. Combined with [FilterSource] it maps a namespaced
// environment onto plain field variable names:
//
//	// APP_DB_PORT becomes DB_PORT.
//	src := xenv.StripKeyPrefix(
//		xenv.FilterSource(xenv.EnvSource(), xenv.KeyPrefixFilter("APP_")),
//		"APP_",
//	)
func StripKeyPrefix(source Source, prefix string) Source {
	return SourceFunc(func() (map[string]string, error) {
		environ, err := source.Load()
		if err != nil {
			return environ, err
		}

		for key, value := range environ {
			if strings.HasPrefix(key, prefix) {
				// Note: here if the stripped key already exists, it will get overwritten.
				delete(environ, key)
				environ[strings.TrimPrefix(key, prefix)] = value
			}
		}

		return environ, nil
	})
}
