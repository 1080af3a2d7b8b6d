package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// OrderKey is one validated order_by segment.
type OrderKey struct {
	Key  string
	Desc bool
}

// OrderSchema whitelists order keys and supplies the default ordering.
type OrderSchema struct {
	Fields   []string
	Default  []OrderKey
	MaxKeys  int
	Fallback string
}

func (s OrderSchema) allowed(key string) bool {
	for _, f := range s.Fields {
		if f == key {
			return true
		}
	}
	return false
}

// ParseOrderBy validates "key [asc|desc], ..." against schema. The fallback key is
// appended when absent so ordering stays deterministic.
func ParseOrderBy(raw string, schema OrderSchema) ([]OrderKey, error) { //nolint:gocyclo // parsing DSL entails validation branches for readability
	if len(schema.Fields) == 0 {
		return nil, errors.New("order schema has no fields defined")
	}
	if schema.Fallback != "" && !schema.allowed(schema.Fallback) {
		return nil, fmt.Errorf("fallback order key %q missing from schema fields", schema.Fallback)
	}

	var keys []OrderKey
	seen := make(map[string]struct{})
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		key := parts[0]
		if !schema.allowed(key) {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key)
		}

		var desc bool
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
			}
		default:
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}

		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = struct{}{}
		if schema.MaxKeys > 0 && len(keys) == schema.MaxKeys {
			return nil, fmt.Errorf("order_by supports at most %d keys", schema.MaxKeys)
		}
		keys = append(keys, OrderKey{Key: key, Desc: desc})
	}

	if len(keys) == 0 {
		keys = append(keys, schema.Default...)
		for _, k := range keys {
			seen[k.Key] = struct{}{}
		}
	}
	if _, ok := seen[schema.Fallback]; schema.Fallback != "" && !ok {
		keys = append(keys, OrderKey{Key: schema.Fallback})
	}
	return keys, nil
}

func setOrder(binding any, keys []OrderKey) error {
	dest, err := structTarget(binding)
	if err != nil {
		return err
	}
	field := dest.FieldByName("Order")
	if !field.IsValid() {
		return fmt.Errorf("params struct %s has no field named %q", dest.Type(), "Order")
	}
	if !field.CanSet() || field.Type() != reflect.TypeOf(keys) {
		return fmt.Errorf("field %q must be a settable []OrderKey", "Order")
	}
	field.Set(reflect.ValueOf(keys))
	return nil
}
