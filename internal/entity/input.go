package entity

import (
	"sort"

	"github.com/matsen/artool/internal/identity"
)

// Input is raw data handed to the normalizer. It is one of StringInput,
// MappingInput, ListInput or StructuredInput.
type Input interface {
	isInput()
}

// StringInput is a bare name, title or identifier.
type StringInput string

// MappingInput is a decoded object keyed by source field names.
type MappingInput map[string]any

// ListInput is a sequence of inputs, typically one per record.
type ListInput []any

// StructuredInput wraps an already-normalized record.
type StructuredInput struct {
	Record *Record
}

func (StringInput) isInput()     {}
func (MappingInput) isInput()    {}
func (ListInput) isInput()       {}
func (StructuredInput) isInput() {}

// AsInput classifies a decoded value. It returns nil for values that carry
// no record data.
func AsInput(v any) Input {
	switch x := v.(type) {
	case nil:
		return nil
	case Input:
		return x
	case *Record:
		if x == nil {
			return nil
		}
		return StructuredInput{Record: x}
	case string:
		return StringInput(x)
	case map[string]any:
		return MappingInput(x)
	case []any:
		return ListInput(x)
	case []string:
		l := make(ListInput, len(x))
		for i, s := range x {
			l[i] = s
		}
		return l
	case []map[string]any:
		l := make(ListInput, len(x))
		for i, m := range x {
			l[i] = m
		}
		return l
	case *Store:
		if x == nil {
			return nil
		}
		l := make(ListInput, 0, x.Len())
		for _, r := range x.Rows() {
			l = append(l, r)
		}
		return l
	}
	if s := identity.Scalar(v); s != "" {
		return StringInput(s)
	}
	return nil
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
