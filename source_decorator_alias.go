// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import "errors"

// ErrAliasPairBroken is an error returned by AliasSource when the variadic
// list of aliases and their keys consists of odd no. of elements.
var ErrAliasPairBroken = errors.New("alias - missing key")

// AliasSource decorates another source to set aliases for variable names.
// The aliases will be added to decorated source's mapping. Useful when
// deployment names don't line up with what the struct fields convert to:
//
//	// the struct declares DBPort, the platform exports PGPORT.
//	src := xenv.AliasSource(xenv.EnvSource(), "DBPORT", "PGPORT")
//
// The second parameter represents a list of alias and keys they're for
// under the form "aliasForKey1, key1, aliasForKey2, key2".
func AliasSource(source Source, aliasKeyKey ...string) Source {
	return SourceFunc(func() (map[string]string, error) {
		if len(aliasKeyKey)%2 == 1 {
			return nil, ErrAliasPairBroken
		}

		environ, err := source.Load()
		if err != nil {
			return environ, err
		}

		for i := 0; i < len(aliasKeyKey); i += 2 {
			alias := aliasKeyKey[i]
			key := aliasKeyKey[i+1]
			if value, found := environ[key]; found {
				// Note: here if the alias already exists, it will get overwritten.
				environ[alias] = value
			}
		}

		return environ, nil
	})
}
