package schema

import (
	"strings"

	"docindex/internal/serialize"
)

// SplitPath splits a dotted field path into its segments, e.g.
// "user.addresses.city" -> ["user", "addresses", "city"].
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segments []string) string {
	return strings.Join(segments, ".")
}

// IsDynamicUUIDSegment reports whether a path segment is itself a
// syntactically valid UUID (spec.md §4.6's dynamic discovery rule),
// gated by the uuid_detection flag the caller has already resolved for
// the parent path.
func IsDynamicUUIDSegment(segment string, uuidDetection bool) bool {
	return uuidDetection && serialize.IsValidUUID(segment)
}

// ResolveUUIDField computes the prefix/uuid_prefix pair for a dynamic
// UUID segment per the three index_uuid_field strategies (spec.md
// §4.6): UUID indexes only the uuid-prefix form, UUID_FIELD indexes
// only the structural prefix, BOTH keeps both.
func ResolveUUIDField(strategy UUIDFieldStrategy, structuralPrefix, uuidPrefix string) (prefix, keptUUIDPrefix string) {
	switch strategy {
	case UUIDStrategyUUID:
		return uuidPrefix, ""
	case UUIDStrategyUUIDField:
		return structuralPrefix, ""
	default: // UUIDStrategyBoth
		return structuralPrefix, uuidPrefix
	}
}

// ExpandNamespacePaths builds the family of partial-path prefixes a
// namespace field materializes at, up to LimitPartialPathsDepth ancestor
// segments (spec.md §4.6: "indexed at every partial path up to a depth
// limit"). segments is the full path from the namespace root to the
// current leaf; the returned paths are ordered shallowest first.
func ExpandNamespacePaths(segments []string) []string {
	depth := len(segments)
	if depth > LimitPartialPathsDepth {
		depth = LimitPartialPathsDepth
	}
	paths := make([]string, 0, depth)
	for i := 1; i <= depth; i++ {
		paths = append(paths, JoinPath(segments[:i]))
	}
	return paths
}
