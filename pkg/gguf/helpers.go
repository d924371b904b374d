package gguf

import "fmt"

func GetString(f *Container, key string) (string, bool) {
	v, ok := f.Lookup(key)
	if !ok {
		return "", false
	}
	return v.Str()
}

func GetBool(f *Container, key string) (bool, bool) {
	v, ok := f.Lookup(key)
	if !ok {
		return false, false
	}
	return v.Bool()
}

func GetUint64(f *Container, key string) (uint64, bool) {
	v, ok := f.Lookup(key)
	if !ok {
		return 0, false
	}
	return v.AsUint64()
}

func GetInt64(f *Container, key string) (int64, bool) {
	v, ok := f.Lookup(key)
	if !ok {
		return 0, false
	}
	return v.AsInt64()
}

func GetFloat64(f *Container, key string) (float64, bool) {
	v, ok := f.Lookup(key)
	if !ok {
		return 0, false
	}
	return v.AsFloat64()
}

// GetArray retrieves an array value as []T, where T is the Go type that
// Value.Interface returns for the element kind (e.g. string for string
// arrays, int32 for i32 arrays).
func GetArray[T any](f *Container, key string) ([]T, bool) {
	v, ok := f.Lookup(key)
	if !ok {
		return nil, false
	}
	if v.Kind() != KindArray {
		return nil, false
	}

	out := make([]T, 0, v.Len())
	for _, e := range v.All() {
		item, ok := e.Interface().(T)
		if !ok {
			return nil, false
		}
		out = append(out, item)
	}
	return out, true
}

func MustGetString(f *Container, key string) (string, error) {
	if s, ok := GetString(f, key); ok {
		return s, nil
	}
	return "", fmt.Errorf("missing or invalid %s", key)
}

func MustGetUint64(f *Container, key string) (uint64, error) {
	if v, ok := GetUint64(f, key); ok {
		return v, nil
	}
	return 0, fmt.Errorf("missing or invalid %s", key)
}
