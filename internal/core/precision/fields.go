package precision

import (
	"fmt"
	"strings"
)

// Bulk field converters for record-shaped data (map[string]any, as decoded
// from JSON documents). Paths are dot-delimited; a path whose field or any
// intermediate segment is missing is skipped silently. A present value that
// cannot be parsed is an error naming the path.

// ConvertFieldsToStorage rewrites each named field on record in place to
// its fixed-point storage form. Null field values stay null.
func ConvertFieldsToStorage(record map[string]any, paths ...string) error {
	return convertFields(record, paths, func(v any) (any, error) {
		sd, err := ToStorageForm(v)
		if err != nil {
			return nil, err
		}
		if sd == nil {
			return nil, nil
		}
		return sd, nil
	})
}

// ConvertFieldsToDisplay rewrites each named field on record in place to
// its canonical display string. Null field values stay null.
func ConvertFieldsToDisplay(record map[string]any, paths ...string) error {
	return convertFields(record, paths, func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		s, err := ToDisplayString(v)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func convertFields(record map[string]any, paths []string, convert func(any) (any, error)) error {
	for _, path := range paths {
		parent, ok := resolveParent(record, path)
		if !ok {
			continue
		}
		leaf := leafKey(path)
		v, ok := parent[leaf]
		if !ok {
			continue
		}
		converted, err := convert(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", path, err)
		}
		parent[leaf] = converted
	}
	return nil
}

// resolveParent walks all but the last segment of path, descending through
// nested maps. Returns false if any segment is missing or not a map.
func resolveParent(record map[string]any, path string) (map[string]any, bool) {
	segments := strings.Split(path, ".")
	current := record
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg]
		if !ok {
			return nil, false
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, false
		}
		current = m
	}
	return current, true
}

func leafKey(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
