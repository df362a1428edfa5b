// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"fmt"
	"strings"

	"github.com/actforgood/xerr"
)

// KeyConflictError is an error returned by MultiSource
// in case of a duplicate variable name.
// If key overwrite is allowed, this error will not be returned.
type KeyConflictError struct {
	key string // the duplicate key
}

// NewKeyConflictError instantiates a new KeyConflictError.
// The duplicate key must be provided.
func NewKeyConflictError(key string) KeyConflictError {
	return KeyConflictError{key: key}
}

// Error returns string representation of the KeyConflictError.
// It implements standard go error interface.
func (e KeyConflictError) Error() string {
	return fmt.Sprintf(`key "%s" already exists`, e.key)
}

// MultiSource is a composite source that merges raw values
// from multiple sources.
type MultiSource struct {
	// sources to take raw values from.
	sources []Source
	// allowKeyOverwrite is a flag that indicates whether a duplicate key
	// is allowed to be overwritten.
	allowKeyOverwrite bool
}

// NewMultiSource instantiates a new MultiSource object that loads
// and merges raw values from multiple sources.
// The first parameter is a flag indicating whether a key is allowed to be
// overwritten, if found more than once.
// If not, a KeyConflictError will be returned.
// If yes, the order of sources matters, meaning a later provided source
// will overwrite a previous provided source's same found key (so put the
// most authoritative source last).
// The rest of the parameters consist of the list of sources raw values
// should be retrieved from.
func NewMultiSource(allowKeyOverwrite bool, sources ...Source) MultiSource {
	return MultiSource{
		sources:           sources,
		allowKeyOverwrite: allowKeyOverwrite,
	}
}

// Load returns a merged raw key-value mapping of all encapsulated sources,
// or an error if something bad happens along the process.
// Sources are loaded sequentially, in the order they were provided:
// a whole load is a one-shot synchronous operation.
func (source MultiSource) Load() (map[string]string, error) {
	var (
		environ = make(map[string]string)
		unqKeys = make(map[string]struct{})
		mErr    *xerr.MultiError
	)

	for _, src := range source.sources {
		currEnviron, err := src.Load()
		if err != nil {
			mErr = mErr.Add(err)

			continue
		}
		for key, value := range currEnviron {
			if !source.allowKeyOverwrite {
				unqKey := strings.ToLower(key)
				if _, found := unqKeys[unqKey]; found {
					mErr = mErr.Add(NewKeyConflictError(key))

					continue
				}
				unqKeys[unqKey] = struct{}{}
			}

			environ[key] = value
		}
	}

	if err := mErr.ErrOrNil(); err != nil {
		return nil, err
	}

	return environ, nil
}
