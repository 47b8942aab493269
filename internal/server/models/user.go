// Package models defines the wardrobe records persisted by the server.
package models

import "time"

// User is an account. Salt and Hash are the PBKDF2 inputs and output; the
// password itself is never stored. ItemIDs and OutfitIDs are the only link
// from a user to the records they own.
type User struct {
	ID         string
	Username   string
	Salt       []byte
	Hash       []byte
	Gender     string
	PictureKey string
	ItemIDs    []string
	OutfitIDs  []string
	CreatedAt  time.Time
}

// Profile is the public view of a user.
type Profile struct {
	Username   string   `json:"username"`
	Gender     string   `json:"gender,omitempty"`
	PictureURL string   `json:"pictureUrl,omitempty"`
	ItemIDs    []string `json:"items"`
	OutfitIDs  []string `json:"outfits"`
}

// OwnsItem reports whether id is in the user's item list.
func (u *User) OwnsItem(id string) bool {
	for _, v := range u.ItemIDs {
		if v == id {
			return true
		}
	}
	return false
}
