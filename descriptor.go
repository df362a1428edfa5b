// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"errors"
	"reflect"
)

// ErrNotPointer is an error returned by [Load] if the target
// is not a pointer.
var ErrNotPointer = errors.New("target must be a pointer to a struct")

// ErrNilPointer is an error returned by [Load] if the target
// is a nil pointer.
var ErrNilPointer = errors.New("target must not be a nil pointer")

// ErrNotStruct is an error returned by [Load] if the target
// points to something else than a struct.
var ErrNotStruct = errors.New("target must point to a struct")

// FieldDefaults is an optional capability a configuration struct can
// implement to expose typed fallback values for its fields, keyed by
// field name.
//
// A value present in the returned map is used as is when neither the
// environ, nor the defaults mapping carry the field's variable name:
// it is already typed, so it bypasses the loader and the empty/"none"
// check optional fields get for raw strings.
//
//	func (DBConfig) FieldDefaults() map[string]any {
//		return map[string]any{"Port": 5432}
//	}
type FieldDefaults interface {
	FieldDefaults() map[string]any
}

// fieldDescriptor holds the metadata of one declared field
// of the target struct.
type fieldDescriptor struct {
	// name is the field's declared name.
	name string
	// declaredType is the field's declared type, optionality included.
	declaredType reflect.Type
	// value is the settable field of the target instance.
	value reflect.Value
	// typedDefault is the field's type-level default value, if any.
	typedDefault any
	// hasTypedDefault indicates whether typedDefault is usable.
	hasTypedDefault bool
}

// describeFields enumerates the target's exported fields in declaration
// order, producing one descriptor per field. Descriptors are recomputed on
// every call, no caching is performed across loads.
//
// A structural sentinel error is returned if the target is not a non-nil
// pointer to a struct. Unexported fields are skipped as they cannot be set.
func describeFields(target any) ([]fieldDescriptor, error) {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Pointer {
		return nil, ErrNotPointer
	}
	if targetValue.IsNil() {
		return nil, ErrNilPointer
	}
	structValue := targetValue.Elem()
	if structValue.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	var typedDefaults map[string]any
	if defaulter, ok := target.(FieldDefaults); ok {
		typedDefaults = defaulter.FieldDefaults()
	}

	structType := structValue.Type()
	fields := make([]fieldDescriptor, 0, structType.NumField())
	for idx := 0; idx < structType.NumField(); idx++ {
		structField := structType.Field(idx)
		if !structField.IsExported() {
			continue
		}

		descriptor := fieldDescriptor{
			name:         structField.Name,
			declaredType: structField.Type,
			value:        structValue.Field(idx),
		}
		if typedDefault, found := typedDefaults[structField.Name]; found {
			descriptor.typedDefault = typedDefault
			descriptor.hasTypedDefault = true
		}
		fields = append(fields, descriptor)
	}

	return fields, nil
}
