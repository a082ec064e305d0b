package hcpn

import (
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"reflect"
	"sort"
	"strings"
)

var ErrNotEnoughTokens = errors.New("not enough tokens")

// Token is a single coloured token. The value belongs to whatever domain the owning place declares; the core treats it
// as opaque apart from equality.
type Token struct {
	Value any `json:"value" yaml:"value"`
}

func (t Token) String() string {
	switch v := t.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return "()"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SameValue reports whether two token values are equal. Decimals compare numerically so that 1.0 and 1.00 are the same
// colour.
func SameValue(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		if db, ok := b.(decimal.Decimal); ok {
			return da.Equal(db)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Multiset is an unordered bag of tokens. Insertion order is kept only so that printing is stable.
type Multiset []Token

func NewMultiset(values ...any) Multiset {
	ms := make(Multiset, 0, len(values))
	return ms.Add(values...)
}

// Add returns ms with one token per value appended. The receiver's backing array is never written to.
func (ms Multiset) Add(values ...any) Multiset {
	ms = ms[:len(ms):len(ms)]
	for _, v := range values {
		ms = append(ms, Token{Value: v})
	}
	return ms
}

func (ms Multiset) Union(other Multiset) Multiset {
	ret := ms.Clone()
	return append(ret, other...)
}

// Remove takes one token per value out of the multiset. The receiver is left untouched when any value is missing.
func (ms Multiset) Remove(values ...any) (Multiset, error) {
	ret := ms.Clone()
	for _, v := range values {
		idx := -1
		for i, tok := range ret {
			if SameValue(tok.Value, v) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ms, fmt.Errorf("%w: %v", ErrNotEnoughTokens, Token{Value: v})
		}
		ret = append(ret[:idx], ret[idx+1:]...)
	}
	return ret, nil
}

func (ms Multiset) Subtract(other Multiset) (Multiset, error) {
	return ms.Remove(other.Values()...)
}

// Diff returns the tokens of ms that other does not account for, counting multiplicities. Unlike Subtract it never
// fails: tokens of other missing from ms are ignored.
func (ms Multiset) Diff(other Multiset) Multiset {
	rest := other.Clone()
	var ret Multiset
	for _, tok := range ms {
		if r, err := rest.Remove(tok.Value); err == nil {
			rest = r
			continue
		}
		ret = append(ret, tok)
	}
	return ret
}

func (ms Multiset) Count(value any) int {
	n := 0
	for _, tok := range ms {
		if SameValue(tok.Value, value) {
			n++
		}
	}
	return n
}

// Contains reports whether every token of other is present in ms, counting multiplicities.
func (ms Multiset) Contains(other Multiset) bool {
	_, err := ms.Subtract(other)
	return err == nil
}

func (ms Multiset) Equal(other Multiset) bool {
	return len(ms) == len(other) && ms.Contains(other)
}

func (ms Multiset) Values() []any {
	ret := make([]any, len(ms))
	for i, tok := range ms {
		ret[i] = tok.Value
	}
	return ret
}

func (ms Multiset) Len() int {
	return len(ms)
}

func (ms Multiset) Clone() Multiset {
	if ms == nil {
		return nil
	}
	ret := make(Multiset, len(ms))
	copy(ret, ms)
	return ret
}

func (ms Multiset) String() string {
	parts := make([]string, len(ms))
	for i, tok := range ms {
		parts[i] = tok.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Marking maps place names to the tokens they hold. A missing place and an empty multiset mean the same thing.
type Marking map[string]Multiset

func (m Marking) Tokens(place string) Multiset {
	if m == nil {
		return nil
	}
	return m[place]
}

func (m Marking) Clone() Marking {
	ret := make(Marking, len(m))
	for place, ms := range m {
		ret[place] = ms.Clone()
	}
	return ret
}

func (m Marking) Equal(other Marking) bool {
	for place, ms := range m {
		if !ms.Equal(other.Tokens(place)) {
			return false
		}
	}
	for place, ms := range other {
		if !ms.Equal(m.Tokens(place)) {
			return false
		}
	}
	return true
}

// Places returns the marked places in lexical order.
func (m Marking) Places() []string {
	ret := make([]string, 0, len(m))
	for place, ms := range m {
		if ms.Len() > 0 {
			ret = append(ret, place)
		}
	}
	sort.Strings(ret)
	return ret
}

func (m Marking) String() string {
	places := m.Places()
	if len(places) == 0 {
		return "(empty)"
	}
	lines := make([]string, len(places))
	for i, place := range places {
		lines[i] = fmt.Sprintf("%s: %s", place, m[place])
	}
	return strings.Join(lines, "\n")
}
