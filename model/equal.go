package model

import "reflect"

// identical reports whether a and b are the same value. Comparable values use
// ==, reference kinds compare by pointer. Nothing is compared deeply.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}

	if !va.Type().Comparable() {
		return false
	}
	return comparableEqual(a, b)
}

// comparableEqual is == that reports false instead of panicking on structs
// or arrays holding uncomparable interface values.
func comparableEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
