package cast

import (
	"fmt"
	"strconv"

	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

// castScalar coerces an untagged value to the target field type, using
// the same free-text guessing rules as serialize.GuessType for strings,
// plus native-typed passthrough when v is already the right Go kind
// (spec.md §4.4: "Coercion rules ... use the same guessing rules as
// §4.1").
func castScalar(v any, target serialize.FieldType) (Result, error) {
	switch target {
	case serialize.FieldInteger:
		n, err := toInt64(v)
		return Result{Type: target, Value: n}, err
	case serialize.FieldPositive:
		n, err := toUint64(v)
		return Result{Type: target, Value: n}, err
	case serialize.FieldFloat:
		f, err := toFloat64(v)
		return Result{Type: target, Value: f}, err
	case serialize.FieldBoolean:
		b, err := CoerceBoolean(v)
		return Result{Type: target, Value: b}, err
	case serialize.FieldKeyword, serialize.FieldText, serialize.FieldString:
		s, err := toString(v)
		return Result{Type: target, Value: s}, err
	case serialize.FieldUUID:
		s, err := toString(v)
		if err != nil {
			return Result{}, err
		}
		if !serialize.IsValidUUID(s) {
			return Result{}, xerrors.New(xerrors.Cast, "invalid uuid %q", s)
		}
		return Result{Type: target, Value: s}, nil
	case serialize.FieldDate:
		s, err := toString(v)
		if err != nil {
			return Result{}, err
		}
		t, err := serialize.ParseDate(s)
		return Result{Type: target, Value: t}, err
	case serialize.FieldDatetime:
		s, err := toString(v)
		if err != nil {
			return Result{}, err
		}
		t, err := serialize.ParseDatetime(s)
		return Result{Type: target, Value: t}, err
	case serialize.FieldTime:
		s, err := toString(v)
		if err != nil {
			return Result{}, err
		}
		secs, err := serialize.ParseTimeOfDay(s)
		return Result{Type: target, Value: secs}, err
	case serialize.FieldTimedelta:
		s, err := toString(v)
		if err != nil {
			return Result{}, err
		}
		secs, err := serialize.ParseTimedelta(s)
		return Result{Type: target, Value: secs}, err
	default:
		return Result{}, xerrors.New(xerrors.Cast, "unsupported scalar cast target %q", target)
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	case nil:
		return "", xerrors.New(xerrors.Cast, "cannot cast nil to string")
	default:
		return fmt.Sprintf("%v", s), nil
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, xerrors.Wrap(xerrors.Cast, err, "cannot cast %q to integer", n)
		}
		return parsed, nil
	default:
		return 0, xerrors.New(xerrors.Cast, "cannot cast %v (%T) to integer", v, v)
	}
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int64:
		if n < 0 {
			return 0, xerrors.New(xerrors.Cast, "cannot cast negative value %d to positive", n)
		}
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, xerrors.New(xerrors.Cast, "cannot cast negative value %d to positive", n)
		}
		return uint64(n), nil
	case float64:
		if n < 0 {
			return 0, xerrors.New(xerrors.Cast, "cannot cast negative value %v to positive", n)
		}
		return uint64(n), nil
	case string:
		parsed, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, xerrors.Wrap(xerrors.Cast, err, "cannot cast %q to positive", n)
		}
		return parsed, nil
	default:
		return 0, xerrors.New(xerrors.Cast, "cannot cast %v (%T) to positive", v, v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, xerrors.Wrap(xerrors.Cast, err, "cannot cast %q to float", n)
		}
		return parsed, nil
	default:
		return 0, xerrors.New(xerrors.Cast, "cannot cast %v (%T) to float", v, v)
	}
}
