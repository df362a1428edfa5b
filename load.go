// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/actforgood/xerr"
	"github.com/actforgood/xlog"
)

// Load populates the struct pointed to by target from a flat string
// key-value mapping, converting each raw string into the field's declared
// type. Every exported field is resolved independently; all failures are
// collected and returned together as one aggregated error, so a single call
// reports every problem at once.
//
// The mapping defaults to a snapshot of the OS environment taken once at
// the start of the call; it can be replaced with [LoadWithEnviron] or any
// [Source] through [LoadWithSource].
//
// Per field, in declaration order:
//   - the field's name is converted to a variable name (upper-cased, by
//     default - see [LoadWithNameConverter]);
//   - value precedence is: environ value, then [LoadWithDefaults] value,
//     then the typed default exposed through the [FieldDefaults] capability
//     (used as is, no parsing), then nil if the field is optional (pointer
//     typed); a field left with no value is an error;
//   - an optional field whose raw string is empty or spells "none" (any
//     casing) is assigned nil without consulting the loader;
//   - otherwise the raw string goes through the loader resolved for the
//     field (see [LoadWithFieldLoader], [LoadWithTypeLoader] and the
//     resolution chain described on them).
//
// A target that is not a non-nil pointer to struct makes Load return a
// structural sentinel error immediately ([ErrNotPointer], [ErrNilPointer],
// [ErrNotStruct]), never aggregated with field errors.
//
// Caller-supplied maps are only read, never mutated.
func Load(target any, opts ...LoadOption) error {
	settings := newLoadSettings(opts...)

	fields, err := describeFields(target)
	if err != nil {
		return err
	}

	environ, err := settings.environMap()
	if err != nil {
		return err
	}

	var mErr *xerr.MultiError
	for _, field := range fields {
		if fieldErr := loadField(field, environ, settings); fieldErr != nil {
			mErr = mErr.Add(fieldErr)
		}
	}

	return mErr.ErrOrNil()
}

// loadField resolves and assigns one field's value.
// A returned error concerns this field alone.
func loadField(field fieldDescriptor, environ map[string]string, settings loadSettings) error {
	variableName := settings.nameConverter(field.name)
	effectiveType, isOptional := analyzeOptional(field.declaredType)
	loader := resolveLoader(
		field.name,
		effectiveType,
		settings.fieldLoaders,
		settings.typeLoaders,
		settings.useBuiltins,
	)

	raw, found := environ[variableName]
	origin := originEnviron
	if !found {
		raw, found = settings.defaults[variableName]
		origin = originDefaults
	}

	if !found {
		if field.hasTypedDefault {
			// already typed, bypasses the loader and the absence check.
			if err := assignValue(field, field.typedDefault, effectiveType, isOptional); err != nil {
				return fmt.Errorf(
					"invalid value for field %s of type %s: %s",
					variableName, effectiveType, err,
				)
			}
			settings.traceField(field.name, variableName, originTypedDefault)

			return nil
		}
		if isOptional {
			field.value.Set(reflect.Zero(field.declaredType))
			settings.traceField(field.name, variableName, originAbsent)

			return nil
		}

		return fmt.Errorf(
			"no value in environ for required field %s of type %s",
			variableName, effectiveType,
		)
	}

	if isOptional && isAbsentValue(raw) {
		field.value.Set(reflect.Zero(field.declaredType))
		settings.traceField(field.name, variableName, originAbsent)

		return nil
	}

	value, err := loader(raw)
	if err != nil {
		return fmt.Errorf(
			"invalid value for field %s of type %s: %s",
			variableName, effectiveType, err,
		)
	}
	if err := assignValue(field, value, effectiveType, isOptional); err != nil {
		return fmt.Errorf(
			"invalid value for field %s of type %s: %s",
			variableName, effectiveType, err,
		)
	}
	settings.traceField(field.name, variableName, origin)

	return nil
}

// assignValue sets a typed value on a field, boxing it into a freshly
// allocated pointer for optional fields.
func assignValue(field fieldDescriptor, value any, effectiveType reflect.Type, isOptional bool) error {
	loaded := reflect.ValueOf(value)
	if !loaded.IsValid() {
		return fmt.Errorf("nil is not assignable to %s", effectiveType)
	}

	if loaded.Type() != effectiveType && !loaded.Type().AssignableTo(effectiveType) {
		// allow numeric flavour adjustments (int default for an int64 field),
		// but never silent cross-kind conversions like int to string.
		sameStringness := (loaded.Kind() == reflect.String) == (effectiveType.Kind() == reflect.String)
		if !loaded.Type().ConvertibleTo(effectiveType) || !sameStringness {
			return fmt.Errorf("%T is not assignable to %s", value, effectiveType)
		}
		loaded = loaded.Convert(effectiveType)
	}

	if isOptional {
		boxed := reflect.New(effectiveType)
		boxed.Elem().Set(loaded)
		field.value.Set(boxed)
	} else {
		field.value.Set(loaded)
	}

	return nil
}

// value origins, for the debug trace.
const (
	originEnviron      = "environ"
	originDefaults     = "defaults"
	originTypedDefault = "typed-default"
	originAbsent       = "absent"
)

// loadSettings holds one load call's configuration.
type loadSettings struct {
	// environ holds the authoritative values, keyed by variable name.
	environ map[string]string
	// environSet discriminates an explicitly supplied empty environ
	// from no environ supplied at all.
	environSet bool
	// source optionally supplies environ instead of the OS environment.
	source Source
	// defaults holds fallback raw values, keyed by variable name.
	defaults map[string]string
	// fieldLoaders holds explicit loaders keyed by field name.
	fieldLoaders map[string]LoadFunc
	// typeLoaders holds explicit loaders keyed by effective type.
	typeLoaders map[reflect.Type]LoadFunc
	// useBuiltins enables the built-in loader table.
	useBuiltins bool
	// nameConverter turns a field name into a variable name.
	nameConverter func(fieldName string) string
	// logger optionally traces per-field resolution, at debug level.
	logger xlog.Logger
}

// newLoadSettings applies options over the defaults.
func newLoadSettings(opts ...LoadOption) loadSettings {
	settings := loadSettings{
		useBuiltins:   true,
		nameConverter: strings.ToUpper,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	return settings
}

// environMap returns the authoritative values mapping for this call:
// the explicitly supplied one, or the supplied Source's, or a one-shot
// snapshot of the OS environment.
func (settings loadSettings) environMap() (map[string]string, error) {
	if settings.environSet {
		return settings.environ, nil
	}
	if settings.source != nil {
		return settings.source.Load()
	}

	return EnvSource().Load()
}

// traceField logs one field's resolution, if a logger was configured.
func (settings loadSettings) traceField(fieldName, variableName, origin string) {
	if settings.logger == nil {
		return
	}
	settings.logger.Debug(
		xlog.MessageKey, "[xenv] field resolved",
		"field", fieldName,
		"var", variableName,
		"origin", origin,
	)
}

// LoadOption defines optional function for configuring a [Load] call.
type LoadOption func(*loadSettings)

// LoadWithEnviron sets the authoritative values mapping, keyed by variable
// name. Passing one (even an empty one) suppresses the default snapshot of
// the OS environment.
func LoadWithEnviron(environ map[string]string) LoadOption {
	return func(settings *loadSettings) {
		settings.environ = environ
		settings.environSet = true
	}
}

// LoadWithSource sets a [Source] to supply the authoritative values mapping,
// e.g. a .env file:
//
//	err := xenv.Load(&cfg, xenv.LoadWithSource(xenv.DotEnvFileSource(".env")))
//
// It is ignored if [LoadWithEnviron] is also applied.
func LoadWithSource(source Source) LoadOption {
	return func(settings *loadSettings) {
		settings.source = source
	}
}

// LoadWithDefaults sets the fallback values mapping, consulted for variable
// names absent from environ. Defaults are raw strings and go through the
// same loaders as environ values.
func LoadWithDefaults(defaults map[string]string) LoadOption {
	return func(settings *loadSettings) {
		settings.defaults = defaults
	}
}

// LoadWithFieldLoader sets the conversion function for one field,
// designated by its declared (struct) name. It has the highest resolution
// priority.
func LoadWithFieldLoader(fieldName string, loader LoadFunc) LoadOption {
	return func(settings *loadSettings) {
		if settings.fieldLoaders == nil {
			settings.fieldLoaders = make(map[string]LoadFunc)
		}
		settings.fieldLoaders[fieldName] = loader
	}
}

// LoadWithTypeLoader sets the conversion function for every field of given
// effective type.
//
//	xenv.LoadWithTypeLoader(
//		reflect.TypeOf([]string(nil)),
//		xenv.AsLoadFunc(xenv.LoadStringList),
//	)
func LoadWithTypeLoader(effectiveType reflect.Type, loader LoadFunc) LoadOption {
	return func(settings *loadSettings) {
		if settings.typeLoaders == nil {
			settings.typeLoaders = make(map[reflect.Type]LoadFunc)
		}
		settings.typeLoaders[effectiveType] = loader
	}
}

// LoadWithoutBuiltinLoaders disables the built-in loader table
// (strict bool, time.Time, time.Duration).
func LoadWithoutBuiltinLoaders() LoadOption {
	return func(settings *loadSettings) {
		settings.useBuiltins = false
	}
}

// LoadWithNameConverter sets the function turning a field name into a
// variable name. Go struct fields are CamelCased where environment
// variables are UPPER_CASED by convention, hence the default
// [strings.ToUpper]; supply your own for more elaborate schemes:
//
//	xenv.LoadWithNameConverter(func(fieldName string) string {
//		return "APP_" + strings.ToUpper(fieldName)
//	})
func LoadWithNameConverter(convert func(fieldName string) string) LoadOption {
	return func(settings *loadSettings) {
		settings.nameConverter = convert
	}
}
