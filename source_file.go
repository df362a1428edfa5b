// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"errors"
	"path/filepath"
)

// ErrUnknownSourceFileExt is an error returned by [FileSource] if file
// extension does not match any supported format.
var ErrUnknownSourceFileExt = errors.New("unknown configuration file extension")

// FileSource is a factory for the appropriate XFileSource based on file's
// extension. This is useful when you don't want to tie an application to a
// certain config format.
// Supported extensions are: .json, .yml, .yaml, .ini, .properties, .env, .toml.
func FileSource(filePath string) Source {
	fileExtension := filepath.Ext(filePath)
	switch fileExtension {
	case ".json":
		return JSONFileSource(filePath)
	case ".yml":
		return YAMLFileSource(filePath)
	case ".yaml":
		return YAMLFileSource(filePath)
	case ".env":
		return DotEnvFileSource(filePath)
	case ".ini":
		return NewIniFileSource(filePath)
	case ".toml":
		return TOMLFileSource(filePath)
	case ".properties":
		return PropertiesFileSource(filePath)
	}

	return SourceFunc(func() (map[string]string, error) {
		return nil, ErrUnknownSourceFileExt
	})
}
