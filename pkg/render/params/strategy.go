package params

import (
	"maps"
	"reflect"
)

// Strategy combines supplied render parameters with defaults. Returning nil
// (or a scalar) declines, handing the decision to the next strategy.
// Implementations must treat defaults as read-only input.
type Strategy interface {
	Merge(params any, defaults map[string]any) any
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(params any, defaults map[string]any) any

// Merge calls f(params, defaults).
func (f StrategyFunc) Merge(params any, defaults map[string]any) any {
	return f(params, defaults)
}

// MergeMap handles maps keyed by strings, including named map types such as
// map[string]string or a caller's own Vars type. It returns a new
// map[string]any holding every default not overridden by a supplied key; the
// input is not modified. The merge is shallow: a supplied nested map replaces
// the default nested map instead of being merged into it.
func MergeMap() Strategy {
	return StrategyFunc(func(params any, defaults map[string]any) any {
		if supplied, ok := params.(map[string]any); ok {
			out := make(map[string]any, len(defaults)+len(supplied))
			maps.Copy(out, defaults)
			maps.Copy(out, supplied)
			return out
		}

		rv := reflect.ValueOf(params)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		out := make(map[string]any, len(defaults)+rv.Len())
		maps.Copy(out, defaults)
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	})
}

// FillObject handles view models implementing Object. Defaults the object
// does not already expose are set on it in place and the same instance is
// returned. Existing properties and methods are never overwritten.
func FillObject() Strategy {
	return StrategyFunc(func(params any, defaults map[string]any) any {
		obj, ok := params.(Object)
		if !ok || isNil(obj) {
			return nil
		}
		for key, value := range defaults {
			if HasMember(obj, key) {
				continue
			}
			obj.SetProperty(key, value)
		}
		return obj
	})
}

// accepted reports whether a strategy result ends the chain.
func accepted(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
