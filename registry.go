// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"encoding"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// LoadFunc converts one raw string into one typed value,
// or fails with a descriptive error on invalid input.
type LoadFunc func(raw string) (any, error)

// builtinLoaders is the fixed built-in table consulted after explicit
// per-field / per-type loaders, unless disabled through
// [LoadWithoutBuiltinLoaders].
var builtinLoaders = map[reflect.Type]LoadFunc{
	reflect.TypeOf(false): func(raw string) (any, error) {
		return LoadBool(raw)
	},
	reflect.TypeOf(time.Time{}): func(raw string) (any, error) {
		return LoadTime(raw)
	},
	reflect.TypeOf(time.Duration(0)): func(raw string) (any, error) {
		return time.ParseDuration(raw)
	},
}

// textUnmarshalerType is the self-loading capability marker: a type
// implementing it declares its own canonical string parser.
var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// resolveLoader returns the conversion function applicable to a field.
//
// Resolution order, first match wins:
//  1. explicit loader keyed by the field's name;
//  2. explicit loader keyed by the field's effective type;
//  3. the built-in table (strict bool, time.Time, time.Duration), if enabled;
//  4. the type's own self-loading capability ([encoding.TextUnmarshaler]);
//  5. the effective type treated as its own constructor - native string,
//     integer, unsigned and float kinds parse with zero configuration, named
//     flavours of them included.
//
// Types falling through all five steps get a loader that always fails,
// telling the caller an explicit loader is required.
func resolveLoader(
	fieldName string,
	effectiveType reflect.Type,
	fieldLoaders map[string]LoadFunc,
	typeLoaders map[reflect.Type]LoadFunc,
	useBuiltins bool,
) LoadFunc {
	if loader, found := fieldLoaders[fieldName]; found {
		return loader
	}
	if loader, found := typeLoaders[effectiveType]; found {
		return loader
	}
	if useBuiltins {
		if loader, found := builtinLoaders[effectiveType]; found {
			return loader
		}
	}
	if effectiveType.Implements(textUnmarshalerType) ||
		reflect.PointerTo(effectiveType).Implements(textUnmarshalerType) {
		return selfLoadingFunc(effectiveType)
	}

	return constructorFunc(effectiveType)
}

// selfLoadingFunc adapts a type's own UnmarshalText into a LoadFunc.
func selfLoadingFunc(effectiveType reflect.Type) LoadFunc {
	return func(raw string) (any, error) {
		instance := reflect.New(effectiveType)
		unmarshaler := instance.Interface().(encoding.TextUnmarshaler)
		if err := unmarshaler.UnmarshalText([]byte(raw)); err != nil {
			return nil, err
		}

		return instance.Elem().Interface(), nil
	}
}

// constructorFunc treats native kinds as single-argument constructors.
// The parsed value is converted to the effective type itself, so named
// types like `type Port uint16` work without any configuration.
func constructorFunc(effectiveType reflect.Type) LoadFunc {
	switch effectiveType.Kind() {
	case reflect.String:
		return func(raw string) (any, error) {
			return reflect.ValueOf(raw).Convert(effectiveType).Interface(), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(raw string) (any, error) {
			parsed, err := cast.ToInt64E(raw)
			if err != nil {
				return nil, err
			}
			if reflect.New(effectiveType).Elem().OverflowInt(parsed) {
				return nil, fmt.Errorf(`"%s" overflows %s`, raw, effectiveType)
			}

			return reflect.ValueOf(parsed).Convert(effectiveType).Interface(), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(raw string) (any, error) {
			parsed, err := cast.ToUint64E(raw)
			if err != nil {
				return nil, err
			}
			if reflect.New(effectiveType).Elem().OverflowUint(parsed) {
				return nil, fmt.Errorf(`"%s" overflows %s`, raw, effectiveType)
			}

			return reflect.ValueOf(parsed).Convert(effectiveType).Interface(), nil
		}
	case reflect.Float32, reflect.Float64:
		return func(raw string) (any, error) {
			parsed, err := cast.ToFloat64E(raw)
			if err != nil {
				return nil, err
			}

			return reflect.ValueOf(parsed).Convert(effectiveType).Interface(), nil
		}
	case reflect.Bool:
		return func(raw string) (any, error) {
			parsed, err := cast.ToBoolE(raw)
			if err != nil {
				return nil, err
			}

			return reflect.ValueOf(parsed).Convert(effectiveType).Interface(), nil
		}
	default:
		return func(string) (any, error) {
			return nil, fmt.Errorf("type %s requires an explicit loader", effectiveType)
		}
	}
}
