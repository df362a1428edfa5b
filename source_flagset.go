// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"flag"
	"sync/atomic"
)

// FlagSetSource reduces flags to a raw key-value mapping, flag values being
// strings already. Useful in a [MultiSource] to let command line flags
// complete, or take precedence over, the process environment.
// The first parameter is the [flag.FlagSet] holding flags.
// The second, optional, parameter indicates if all flags (even those not
// explicitly set) should be taken into consideration; by default, is true.
func FlagSetSource(flgSet *flag.FlagSet, visitAll ...bool) Source {
	all := true
	if len(visitAll) > 0 {
		all = visitAll[0]
	}
	environ := make(map[string]string)
	storeFlagsIntoMap := func(f *flag.Flag) {
		environ[f.Name] = f.Value.String()
	}
	var initialized int32

	return SourceFunc(func() (map[string]string, error) {
		if flgSet.Parsed() && atomic.CompareAndSwapInt32(&initialized, 0, 1) {
			if all {
				flgSet.VisitAll(storeFlagsIntoMap)
			} else {
				flgSet.Visit(storeFlagsIntoMap)
			}
		}

		return copyStringMap(environ), nil // make a copy for an eventual (safe) later mutation.
	})
}
