package schema

import (
	"fmt"
)

// Directive values arrive as whatever a TOML table or an in-memory
// map[string]any happens to hold; these helpers normalize the handful
// of shapes the reserved property writers accept, including the
// Open-Question-2 "bare scalar or array, both accepted" leniency for
// position/weight/spelling/positions (see DESIGN.md).

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	}
	return false, fmt.Errorf("expected bool, got %T", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toUint32(v any) (uint32, error) {
	switch n := v.(type) {
	case uint32:
		return n, nil
	case int:
		return uint32(n), nil
	case int64:
		return uint32(n), nil
	case uint64:
		return uint32(n), nil
	case float64:
		return uint32(n), nil
	}
	return 0, fmt.Errorf("expected integer slot, got %T", v)
}

func toIntSlice(v any) ([]int, error) {
	items, err := asSlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case int:
			out[i] = n
		case int64:
			out[i] = int(n)
		case float64:
			out[i] = int(n)
		default:
			return nil, fmt.Errorf("element %d: expected integer, got %T", i, item)
		}
	}
	return out, nil
}

func toFloatSlice(v any) ([]float64, error) {
	items, err := asSlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ferr := toFloat64(item)
		if ferr != nil {
			return nil, fmt.Errorf("element %d: %w", i, ferr)
		}
		out[i] = f
	}
	return out, nil
}

func toBoolSlice(v any) ([]bool, error) {
	items, err := asSlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(items))
	for i, item := range items {
		b, berr := toBool(item)
		if berr != nil {
			return nil, fmt.Errorf("element %d: %w", i, berr)
		}
		out[i] = b
	}
	return out, nil
}

func toUint64Slice(v any) ([]uint64, error) {
	items, err := asSlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case uint64:
			out[i] = n
		case int:
			out[i] = uint64(n)
		case int64:
			out[i] = uint64(n)
		case float64:
			out[i] = uint64(n)
		default:
			return nil, fmt.Errorf("element %d: expected integer, got %T", i, item)
		}
	}
	return out, nil
}

// asSlice accepts either a native []any or a bare scalar, wrapping the
// scalar as a single-element slice (Open Question 2).
func asSlice(v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}
	if v == nil {
		return nil, nil
	}
	return []any{v}, nil
}
