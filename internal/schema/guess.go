package schema

import (
	"docindex/internal/cast"
	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

// GuessFieldType infers the concrete type of an as-yet-untyped value
// (spec.md §4.6's guess_field_type), consulting detection flags in the
// fixed trial order: positive/integer/float (by native Go numeric kind,
// standing in for the original's MsgPack tag dispatch), boolean, then
// the §4.1 string-guessing trials. A map with exactly one "_<tag>" key
// is resolved through the C4 cast resolver instead of being treated as
// a nested object.
func GuessFieldType(value any, flags Flags) (serialize.FieldType, any, error) {
	switch v := value.(type) {
	case int:
		return classifyInt(int64(v)), v, nil
	case int64:
		return classifyInt(v), v, nil
	case uint64:
		return serialize.FieldPositive, v, nil
	case float64:
		return serialize.FieldFloat, v, nil
	case bool:
		return serialize.FieldBoolean, v, nil
	case string:
		return serialize.GuessType(v, flags.DetectionFlags()), v, nil
	case map[string]any:
		if cast.IsCastEnvelope(v) {
			result, err := cast.Resolve(v)
			if err != nil {
				return "", nil, err
			}
			return result.Type, result.Value, nil
		}
		return "", nil, xerrors.New(xerrors.InvalidArgument, "value cannot be nested: object with %d keys is not a valid cast envelope", len(v))
	case []any:
		return "", nil, xerrors.New(xerrors.InvalidArgument, "value cannot be nested: bare array requires an explicit array-typed field")
	case nil:
		return serialize.FieldEmpty, nil, nil
	default:
		return "", nil, xerrors.New(xerrors.InvalidArgument, "unrecognized value type %T", value)
	}
}

func classifyInt(n int64) serialize.FieldType {
	if n >= 0 {
		return serialize.FieldPositive
	}
	return serialize.FieldInteger
}
