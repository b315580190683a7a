package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// RunContext holds the caller supplied inputs of one run.
// It is immutable: the constructor copies the map and accessors never expose it.
type RunContext struct {
	values map[string]any
}

// NewRunContext creates a RunContext from a copy of values.
func NewRunContext(values map[string]any) RunContext {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return RunContext{values: cp}
}

// BriefingContext builds the RunContext of a daily briefing request.
func BriefingContext(location, topic string, itemCount int) RunContext {
	return NewRunContext(map[string]any{
		KeyLocation:  location,
		KeyTopic:     topic,
		KeyNewsCount: itemCount,
	})
}

// Value returns the raw value stored under key.
func (c RunContext) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the value under key as a string, or def when the key is
// missing or holds an empty string.
func (c RunContext) String(key, def string) string {
	v, ok := c.values[key]
	if !ok || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if s == "" {
		return def
	}
	return s
}

// Int returns the value under key as an int, or def when it is missing or not numeric.
func (c RunContext) Int(key string, def int) int {
	v, ok := c.values[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// Keys returns the sorted list of keys present in the context.
func (c RunContext) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying values.
func (c RunContext) Map() map[string]any {
	cp := make(map[string]any, len(c.values))
	for k, v := range c.values {
		cp[k] = v
	}
	return cp
}
