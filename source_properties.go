// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"os"

	"github.com/magiconair/properties"
)

// PropertiesFileSource supplies raw values from a Java Properties
// content based file. The location of the file is given as parameter.
func PropertiesFileSource(filePath string) Source {
	return SourceFunc(func() (map[string]string, error) {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}

		return PropertiesBytesSource(content).Load()
	})
}

// PropertiesBytesSource supplies raw values from Properties content bytes.
func PropertiesBytesSource(propertiesContent []byte) Source {
	return SourceFunc(func() (map[string]string, error) {
		loader := properties.Loader{
			Encoding:         properties.UTF8,
			DisableExpansion: false,
		}
		cfg, err := loader.LoadBytes(propertiesContent)
		if err != nil {
			return nil, err
		}
		keys := cfg.Keys()

		environ := make(map[string]string, len(keys))
		for _, key := range keys {
			value, _ := cfg.Get(key)
			environ[key] = value
		}

		return environ, nil
	})
}
