package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is the codec boundary for JSON-array TEXT columns
// (shared_with, tags). It round-trips as a JSON array and never relies on
// substring matching for membership.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case string:
		return s.decode([]byte(v))
	case []byte:
		return s.decode(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

func (s *StringList) decode(b []byte) error {
	if len(b) == 0 {
		*s = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("malformed list column: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

func (s StringList) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// NormalizeIDSet drops empty strings and duplicates. Order is not significant.
func NormalizeIDSet(ids []string) StringList {
	out := StringList{}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
