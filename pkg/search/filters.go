package search

import (
	"cmp"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	dErrors "qms/pkg/domain-errors"
)

// Filter binds one or more query parameters to a predicate. A filter whose
// parameters are absent contributes nothing to the query.
type Filter[T any] struct {
	Params []string
	parse  func(values url.Values) (Predicate[T], error)
}

func param(values url.Values, key string) (string, bool) {
	raw := strings.TrimSpace(values.Get(key))
	return raw, raw != ""
}

// Contains matches when field contains the value, ignoring case.
// Used for free-text fields such as titles, names and descriptions.
func Contains[T any](key string, field func(T) string) Filter[T] {
	return Filter[T]{
		Params: []string{key},
		parse: func(values url.Values) (Predicate[T], error) {
			raw, ok := param(values, key)
			if !ok {
				return nil, nil
			}
			needle := strings.ToLower(raw)
			return func(item T, _ time.Time) bool {
				return strings.Contains(strings.ToLower(field(item)), needle)
			}, nil
		},
	}
}

// Equals matches when field equals the value, ignoring case.
// Used for references such as companyId or processId.
func Equals[T any](key string, field func(T) string) Filter[T] {
	return Filter[T]{
		Params: []string{key},
		parse: func(values url.Values) (Predicate[T], error) {
			raw, ok := param(values, key)
			if !ok {
				return nil, nil
			}
			return func(item T, _ time.Time) bool {
				return strings.EqualFold(field(item), raw)
			}, nil
		},
	}
}

// Enum matches field against one value of a closed set. Values outside the
// set fail with CodeValidation; input is upper-cased before checking.
func Enum[T any](key string, field func(T, time.Time) string, allowed ...string) Filter[T] {
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return Filter[T]{
		Params: []string{key},
		parse: func(values url.Values) (Predicate[T], error) {
			raw, ok := param(values, key)
			if !ok {
				return nil, nil
			}
			want := strings.ToUpper(raw)
			if _, ok := set[want]; !ok {
				return nil, dErrors.Validation(key, fmt.Sprintf("%s debe ser uno de: %s", key, strings.Join(allowed, ", ")))
			}
			return func(item T, now time.Time) bool {
				return field(item, now) == want
			}, nil
		},
	}
}

// DateRange registers <name>From and <name>To, both inclusive. A date-only
// upper bound covers the whole day. Items with no date never match once a
// bound is given. From after To is accepted and simply matches nothing.
func DateRange[T any](name string, field func(T) *time.Time) Filter[T] {
	fromKey, toKey := name+"From", name+"To"
	return Filter[T]{
		Params: []string{fromKey, toKey},
		parse: func(values url.Values) (Predicate[T], error) {
			rawFrom, hasFrom := param(values, fromKey)
			rawTo, hasTo := param(values, toKey)
			if !hasFrom && !hasTo {
				return nil, nil
			}
			var from, to time.Time
			if hasFrom {
				t, _, err := parseTime(rawFrom)
				if err != nil {
					return nil, dErrors.Validation(fromKey, fromKey+" debe ser una fecha válida (YYYY-MM-DD o RFC3339)")
				}
				from = t
			}
			if hasTo {
				t, dateOnly, err := parseTime(rawTo)
				if err != nil {
					return nil, dErrors.Validation(toKey, toKey+" debe ser una fecha válida (YYYY-MM-DD o RFC3339)")
				}
				if dateOnly {
					t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
				}
				to = t
			}
			return func(item T, _ time.Time) bool {
				v := field(item)
				if v == nil || v.IsZero() {
					return false
				}
				if hasFrom && v.Before(from) {
					return false
				}
				if hasTo && v.After(to) {
					return false
				}
				return true
			}, nil
		},
	}
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

// NumberRange registers min<Name> and max<Name>, both inclusive.
func NumberRange[T any](name string, field func(T, time.Time) float64) Filter[T] {
	suffix := capitalize(name)
	minKey, maxKey := "min"+suffix, "max"+suffix
	return Filter[T]{
		Params: []string{minKey, maxKey},
		parse: func(values url.Values) (Predicate[T], error) {
			rawMin, hasMin := param(values, minKey)
			rawMax, hasMax := param(values, maxKey)
			if !hasMin && !hasMax {
				return nil, nil
			}
			var lo, hi float64
			var err error
			if hasMin {
				if lo, err = strconv.ParseFloat(rawMin, 64); err != nil {
					return nil, dErrors.Validation(minKey, minKey+" debe ser numérico")
				}
			}
			if hasMax {
				if hi, err = strconv.ParseFloat(rawMax, 64); err != nil {
					return nil, dErrors.Validation(maxKey, maxKey+" debe ser numérico")
				}
			}
			return func(item T, now time.Time) bool {
				v := field(item, now)
				if hasMin && v < lo {
					return false
				}
				if hasMax && v > hi {
					return false
				}
				return true
			}, nil
		},
	}
}

// Flag binds a boolean parameter to a derived predicate computed at query
// time. "true" keeps matching items, "false" keeps the rest.
func Flag[T any](key string, pred func(T, time.Time) bool) Filter[T] {
	return Filter[T]{
		Params: []string{key},
		parse: func(values url.Values) (Predicate[T], error) {
			raw, ok := param(values, key)
			if !ok {
				return nil, nil
			}
			want, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, dErrors.Validation(key, key+" debe ser true o false")
			}
			return func(item T, now time.Time) bool {
				return pred(item, now) == want
			}, nil
		},
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ByString compares a string field case-insensitively.
func ByString[T any](field func(T) string) Comparator[T] {
	return func(a, b T, _ time.Time) int {
		return cmp.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// ByTime compares a date field. Missing dates sort after present ones in
// ascending order.
func ByTime[T any](field func(T) *time.Time) Comparator[T] {
	return func(a, b T, _ time.Time) int {
		ta, tb := field(a), field(b)
		switch {
		case ta == nil && tb == nil:
			return 0
		case ta == nil:
			return 1
		case tb == nil:
			return -1
		}
		return ta.Compare(*tb)
	}
}

// ByNumber compares a numeric field.
func ByNumber[T any, N cmp.Ordered](field func(T) N) Comparator[T] {
	return func(a, b T, _ time.Time) int {
		return cmp.Compare(field(a), field(b))
	}
}

// ByRank compares an enum field by its position in order. Values not listed
// sort last.
func ByRank[T any](field func(T) string, order ...string) Comparator[T] {
	return ByRankAt(func(item T, _ time.Time) string { return field(item) }, order...)
}

// ByRankAt is ByRank for a value derived at the query instant, such as an
// effective status.
func ByRankAt[T any](field func(T, time.Time) string, order ...string) Comparator[T] {
	rank := make(map[string]int, len(order))
	for i, v := range order {
		rank[v] = i
	}
	pos := func(v string) int {
		if r, ok := rank[v]; ok {
			return r
		}
		return len(order)
	}
	return func(a, b T, now time.Time) int {
		return cmp.Compare(pos(field(a, now)), pos(field(b, now)))
	}
}
