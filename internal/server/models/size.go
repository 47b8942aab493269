package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type SizeKind string

const (
	SizeNone    SizeKind = ""
	SizeLetter  SizeKind = "letter"
	SizeNumeric SizeKind = "numeric"
	SizePaired  SizeKind = "paired"
)

// Size is one of: a letter size ("M"), a numeric size (8) or a paired size
// such as waist x inseam (32x30). The zero value means "no size".
type Size struct {
	Kind   SizeKind
	Letter string
	First  int
	Second int
}

func LetterSize(s string) Size { return Size{Kind: SizeLetter, Letter: s} }
func NumericSize(n int) Size { return Size{Kind: SizeNumeric, First: n} }
func PairedSize(first, second int) Size {
	return Size{Kind: SizePaired, First: first, Second: second}
}

func (s Size) String() string {
	switch s.Kind {
	case SizeLetter:
		return s.Letter
	case SizeNumeric:
		return strconv.Itoa(s.First)
	case SizePaired:
		return fmt.Sprintf("%dx%d", s.First, s.Second)
	default:
		return ""
	}
}

// ParseSize reads the text form produced by String. Anything that is not a
// number or a NxM pair is a letter size.
func ParseSize(text string) Size {
	text = strings.TrimSpace(text)
	if text == "" {
		return Size{}
	}
	if n, err := strconv.Atoi(text); err == nil {
		return NumericSize(n)
	}
	if a, b, ok := strings.Cut(strings.ToLower(text), "x"); ok {
		first, err1 := strconv.Atoi(strings.TrimSpace(a))
		second, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 == nil && err2 == nil {
			return PairedSize(first, second)
		}
	}
	return LetterSize(text)
}

type sizeJSON struct {
	Kind   SizeKind `json:"kind"`
	Letter string   `json:"letter,omitempty"`
	Value  *int     `json:"value,omitempty"`
	First  *int     `json:"first,omitempty"`
	Second *int     `json:"second,omitempty"`
}

func (s Size) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SizeNone:
		return []byte("null"), nil
	case SizeLetter:
		return json.Marshal(sizeJSON{Kind: s.Kind, Letter: s.Letter})
	case SizeNumeric:
		return json.Marshal(sizeJSON{Kind: s.Kind, Value: &s.First})
	case SizePaired:
		return json.Marshal(sizeJSON{Kind: s.Kind, First: &s.First, Second: &s.Second})
	default:
		return nil, fmt.Errorf("unknown size kind %q", s.Kind)
	}
}

// UnmarshalJSON accepts the tagged object form, null, or a bare string in
// the text form ("M", "8", "32x30").
func (s *Size) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Size{}
		return nil
	}
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*s = ParseSize(text)
		return nil
	}

	var v sizeJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	switch v.Kind {
	case SizeLetter:
		if v.Letter == "" {
			return fmt.Errorf("size: letter size needs a letter")
		}
		*s = LetterSize(v.Letter)
	case SizeNumeric:
		if v.Value == nil {
			return fmt.Errorf("size: numeric size needs a value")
		}
		*s = NumericSize(*v.Value)
	case SizePaired:
		if v.First == nil || v.Second == nil {
			return fmt.Errorf("size: paired size needs first and second")
		}
		*s = PairedSize(*v.First, *v.Second)
	default:
		return fmt.Errorf("size: unknown kind %q", v.Kind)
	}
	return nil
}
