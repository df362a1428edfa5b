// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"fmt"

	"github.com/spf13/cast"
)

// defaultFlatKeySeparator joins nested keys in flattened mappings.
const defaultFlatKeySeparator = "."

// flattenToStringMap reduces a decoded document (json/yaml/toml) to a flat
// raw string mapping the typed load engine works with.
//
// Nested tables/objects contribute their leaves under dotted keys, example:
//
//	{"mysql": {"host": "127.0.0.1", "port": 3306}}
//
// becomes {"mysql.host": "127.0.0.1", "mysql.port": "3306"}.
// Scalar leaves are stringified. Arrays and other non-scalar leaves are
// not representable as one raw string and produce an error - keep list
// values as CSV / logfmt strings in such documents.
func flattenToStringMap(document map[string]any, separator string) (map[string]string, error) {
	flat := make(map[string]string, len(document))
	if err := flattenInto(flat, "", document, separator); err != nil {
		return nil, err
	}

	return flat, nil
}

// flattenInto walks one nesting level.
func flattenInto(flat map[string]string, prefix string, document map[string]any, separator string) error {
	for key, value := range document {
		flatKey := key
		if prefix != "" {
			flatKey = prefix + separator + key
		}

		switch val := value.(type) {
		case map[string]any:
			if err := flattenInto(flat, flatKey, val, separator); err != nil {
				return err
			}
		case map[any]any: // yaml decoder produces this flavour.
			if err := flattenInto(flat, flatKey, cast.ToStringMap(val), separator); err != nil {
				return err
			}
		default:
			strValue, err := cast.ToStringE(value)
			if err != nil {
				return fmt.Errorf(`key "%s": %w`, flatKey, err)
			}
			flat[flatKey] = strValue
		}
	}

	return nil
}
