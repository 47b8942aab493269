package models

import "time"

// Palette describes a multi-valued attribute such as colour or material:
// the labels present plus an optional weight per label, e.g. 80% cotton.
type Palette struct {
	Labels  []string       `json:"labels,omitempty"`
	Weights map[string]int `json:"weights,omitempty"`
}

// Purchase records where and when an item was bought. Price is in whole
// currency units.
type Purchase struct {
	Location string `json:"location,omitempty"`
	Price    *int   `json:"price,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Item is one piece of clothing.
type Item struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory"`
	Type        string    `json:"type"`
	Styles      []string  `json:"styles"`
	Fit         string    `json:"fit"`
	Length      string    `json:"length"`
	Color       Palette   `json:"color"`
	Material    Palette   `json:"material"`
	Brand       string    `json:"brand"`
	Rating      *int      `json:"rating,omitempty"`
	Condition   *int      `json:"condition,omitempty"`
	Size        Size      `json:"size"`
	Purchase    *Purchase `json:"purchase,omitempty"`
	PictureKey  string    `json:"-"`
	PictureURL  string    `json:"pictureUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Outfit groups items by reference.
type Outfit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Styles      []string  `json:"styles"`
	Season      string    `json:"season"`
	Rating      *int      `json:"rating,omitempty"`
	ItemIDs     []string  `json:"items"`
	PictureKey  string    `json:"-"`
	PictureURL  string    `json:"pictureUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IntPtr is a convenience for optional integer fields.
func IntPtr(v int) *int { return &v }
