// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"gopkg.in/ini.v1"
)

// IniFileSource supplies raw values from an INI content based file.
type IniFileSource struct {
	// filePath is ini content based file to be parsed.
	filePath string
	// loadOpts are the original package parse options.
	loadOpts ini.LoadOptions
	// keyFunc is a function that returns the final variable name
	// based on a section and a key under it.
	keyFunc func(section, key string) string
}

// NewIniFileSource instantiates a new IniFileSource object that supplies
// INI configuration from a file.
// The location of INI content based file is given as parameter.
func NewIniFileSource(filePath string, opts ...IniFileSourceOption) IniFileSource {
	source := IniFileSource{
		filePath: filePath,
		loadOpts: ini.LoadOptions{},
		keyFunc:  defaultIniKeyFunc,
	}

	// apply options, if any.
	for _, opt := range opts {
		opt(&source)
	}

	return source
}

// Load returns a raw key-value mapping from an INI file,
// or an error if something bad happens along the process.
func (source IniFileSource) Load() (map[string]string, error) {
	cfg, err := ini.LoadSources(source.loadOpts, source.filePath)
	if err != nil {
		return nil, err
	}

	environ := make(map[string]string)
	sections := cfg.Sections()
	for _, section := range sections {
		for _, key := range section.Keys() {
			keyName := source.keyFunc(section.Name(), key.Name())
			environ[keyName] = key.Value()
		}
	}

	return environ, nil
}

// IniFileSourceOption defines optional function for configuring
// an INI File Source.
type IniFileSourceOption func(*IniFileSource)

// IniFileSourceWithLoadOptions sets given ini load options on the source.
// By default, an empty object is used.
func IniFileSourceWithLoadOptions(iniLoadOpts ini.LoadOptions) IniFileSourceOption {
	return func(source *IniFileSource) {
		source.loadOpts = iniLoadOpts
	}
}

// IniFileSourceWithSectionKeyFunc sets given variable name provider based
// on a key and the section it belongs to.
//
// By default a function that returns the same key for default section, and
// <section.key> for a different section from default is used.
//
// You may want for example to provide a custom function that ignores the section:
//
//	xenv.IniFileSourceWithSectionKeyFunc(func(_, key string) string {
//		return key
//	})
func IniFileSourceWithSectionKeyFunc(keyFunc func(section, key string) string) IniFileSourceOption {
	return func(source *IniFileSource) {
		source.keyFunc = keyFunc
	}
}

// defaultIniKeyFunc is the default implementation for providing the variable
// name in the final raw mapping for an ini key under a section.
// Example: given the ini content:
//
//	foo=bar
//	[time]
//	year=2022
//
// it will produce "foo" and "time.year" for the 2 above keys.
var defaultIniKeyFunc = func(section, key string) string {
	if section == ini.DefaultSection {
		return key
	}

	return section + defaultFlatKeySeparator + key
}
