// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import "os"

// Source is responsible for supplying a flat raw string
// key-value mapping to load configuration from.
type Source interface {
	// Load returns a raw key-value mapping or an error.
	//
	// It's Source's responsibility to return a map that is safe for
	// an eventual later mutation (decorator sources may alter the
	// returned mapping, and callers receive it by reference), in
	// other words a disposable copy.
	Load() (map[string]string, error)
}

// The SourceFunc type is an adapter to allow the use of
// ordinary functions as Sources. If fn is a function
// with the appropriate signature, SourceFunc(fn) is a
// Source that calls fn.
type SourceFunc func() (map[string]string, error)

// Load calls fn().
func (fn SourceFunc) Load() (map[string]string, error) {
	return fn()
}

// EnvSource supplies the OS environment, snapshot at call time.
func EnvSource() Source {
	return SourceFunc(func() (map[string]string, error) {
		envs := os.Environ()

		environ := make(map[string]string, len(envs))
		const kvSeparator = '='
		for _, env := range envs {
			for i := 0; i < len(env); i++ {
				if env[i] == kvSeparator {
					environ[env[:i]] = env[i+1:]

					break
				}
			}
		}

		return environ, nil
	})
}

// MapSource is an explicit go map supplier.
// It simply returns a copy of the given mapping parameter.
//
// It can be used for example:
//
// - in a [MultiSource] (with allowing keys overwrite) as the first source
// in order to specify fallback values.
//
// - to provide any application hardcoded values.
func MapSource(environ map[string]string) Source {
	// make a copy to preserve state at current time.
	// (prevents user modification of environ from outside while using the source).
	environCopy := copyStringMap(environ)

	return SourceFunc(func() (map[string]string, error) {
		return copyStringMap(environCopy), nil // make a copy for an eventual (safe) later mutation.
	})
}

// copyStringMap clones a flat string map.
func copyStringMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for key, value := range src {
		dst[key] = value
	}

	return dst
}
