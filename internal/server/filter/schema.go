// Package filter implements the per-field item filter and the broad keyword
// search over a user's wardrobe.
//
// Fields are described once, up front, by a Schema. Each Descriptor knows
// its kind and how to read the value from an item, so filtering never has
// to guess a field's type from the data.
package filter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

type Kind int

const (
	// Number fields match by integer equality.
	Number Kind = iota + 1
	// Text fields match by case-insensitive substring.
	Text
	// Nested fields hold several text and numeric values; any may match.
	Nested
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	case Nested:
		return "nested"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Descriptor describes one filterable item field. Only the accessor that
// matches Kind is set.
type Descriptor struct {
	Name string
	Kind Kind

	number func(*models.Item) (int, bool)
	text   func(*models.Item) string
	nested func(*models.Item) ([]string, []int)
}

func NumberField(name string, get func(*models.Item) (int, bool)) Descriptor {
	return Descriptor{Name: name, Kind: Number, number: get}
}

func TextField(name string, get func(*models.Item) string) Descriptor {
	return Descriptor{Name: name, Kind: Text, text: get}
}

func NestedField(name string, get func(*models.Item) ([]string, []int)) Descriptor {
	return Descriptor{Name: name, Kind: Nested, nested: get}
}

// Schema is an immutable set of descriptors keyed by lower-cased name.
type Schema struct {
	fields map[string]Descriptor
	names  []string
}

func NewSchema(descriptors ...Descriptor) (*Schema, error) {
	s := &Schema{fields: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("descriptor without a name")
		}
		if (d.Kind == Number && d.number == nil) ||
			(d.Kind == Text && d.text == nil) ||
			(d.Kind == Nested && d.nested == nil) {
			return nil, fmt.Errorf("field %s: accessor does not match kind %s", d.Name, d.Kind)
		}
		k := strings.ToLower(d.Name)
		if _, dup := s.fields[k]; dup {
			return nil, fmt.Errorf("field %s declared twice", d.Name)
		}
		s.fields[k] = d
		s.names = append(s.names, d.Name)
	}
	return s, nil
}

func MustSchema(descriptors ...Descriptor) *Schema {
	s, err := NewSchema(descriptors...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup finds a field by its display or camelCase name, ignoring case.
func (s *Schema) Lookup(name string) (Descriptor, bool) {
	d, ok := s.fields[strings.ToLower(NormalizeFieldName(name))]
	return d, ok
}

// Fields lists the field names in declaration order.
func (s *Schema) Fields() []string {
	return append([]string(nil), s.names...)
}

// NormalizeFieldName turns a display label into a camelCase field name:
// "Sub Category" becomes "subCategory", "Rating" becomes "rating".
func NormalizeFieldName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}

func optional(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func palette(p models.Palette) ([]string, []int) {
	nums := make([]int, 0, len(p.Weights))
	texts := append([]string(nil), p.Labels...)
	for label, w := range p.Weights {
		texts = append(texts, label)
		nums = append(nums, w)
	}
	return texts, nums
}

// ItemSchema is the field registry for wardrobe items.
var ItemSchema = MustSchema(
	TextField("category", func(i *models.Item) string { return i.Category }),
	TextField("subCategory", func(i *models.Item) string { return i.SubCategory }),
	TextField("type", func(i *models.Item) string { return i.Type }),
	TextField("description", func(i *models.Item) string { return i.Description }),
	TextField("brand", func(i *models.Item) string { return i.Brand }),
	TextField("fit", func(i *models.Item) string { return i.Fit }),
	TextField("length", func(i *models.Item) string { return i.Length }),
	TextField("size", func(i *models.Item) string { return i.Size.String() }),
	TextField("purchaseLocation", func(i *models.Item) string {
		if i.Purchase == nil {
			return ""
		}
		return i.Purchase.Location
	}),
	TextField("purchaseDate", func(i *models.Item) string {
		if i.Purchase == nil {
			return ""
		}
		return i.Purchase.Date
	}),

	NumberField("rating", func(i *models.Item) (int, bool) { return optional(i.Rating) }),
	NumberField("condition", func(i *models.Item) (int, bool) { return optional(i.Condition) }),
	NumberField("purchasePrice", func(i *models.Item) (int, bool) {
		if i.Purchase == nil {
			return 0, false
		}
		return optional(i.Purchase.Price)
	}),

	NestedField("styles", func(i *models.Item) ([]string, []int) { return i.Styles, nil }),
	NestedField("color", func(i *models.Item) ([]string, []int) { return palette(i.Color) }),
	NestedField("material", func(i *models.Item) ([]string, []int) { return palette(i.Material) }),
)
