package entity

import "time"

// Author is the owner summary embedded in public book listings.
type Author struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage"`
}

// Book is a shared book post. Image is a hosted URL, never raw image data.
type Book struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption"`
	Rating    int       `json:"rating"`
	Image     string    `json:"image"`
	UserID    string    `json:"userId"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnedBy reports whether userID owns b.
func (b *Book) OwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}
