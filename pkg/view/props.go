package view

import "reflect"

// Props holds element attributes.
type Props map[string]any

// Equal reports whether two prop maps are structurally equal.
func (p Props) Equal(o Props) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !ValueEqual(v, ov) {
			return false
		}
	}
	return true
}

// Changed returns the subset of p whose values differ from prev, plus the
// keys of prev that are absent from p (mapped to nil). An empty result
// means applying p over prev is a no-op.
func (p Props) Changed(prev Props) Props {
	var out Props
	set := func(k string, v any) {
		if out == nil {
			out = Props{}
		}
		out[k] = v
	}
	for k, v := range p {
		if pv, ok := prev[k]; !ok || !ValueEqual(v, pv) {
			set(k, v)
		}
	}
	for k := range prev {
		if _, ok := p[k]; !ok {
			set(k, nil)
		}
	}
	return out
}

// ValueEqual compares two attribute or prop values structurally.
func ValueEqual(a, b any) bool {
	// Fast path for common scalar types.
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// Comparable reports whether v can participate in structural equality.
// Functions and channels (directly or nested inside structs, maps, slices,
// arrays, pointers, or interfaces) cannot; props containing them are a
// structural error and force a rebuild of the owning subtree.
func Comparable(v any) bool {
	if v == nil {
		return true
	}
	return comparableValue(reflect.ValueOf(v), 0)
}

// maxComparableDepth bounds the reflection walk on cyclic structures.
const maxComparableDepth = 32

func comparableValue(v reflect.Value, depth int) bool {
	if depth > maxComparableDepth {
		return true
	}
	switch v.Kind() {
	case reflect.Func:
		// Nil funcs compare equal structurally; live ones never do.
		return v.IsNil()
	case reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return comparableValue(v.Elem(), depth+1)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !comparableValue(v.Field(i), depth+1) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !comparableValue(v.Index(i), depth+1) {
				return false
			}
		}
		return true
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !comparableValue(iter.Key(), depth+1) || !comparableValue(iter.Value(), depth+1) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
