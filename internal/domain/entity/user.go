package entity

import (
	"fmt"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultLocation = "Tijuana"
)

type User struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	Email       string    `json:"email" firestore:"email"`
	Avatar      string    `json:"avatar,omitempty" firestore:"profilePicture,omitempty"`
	Location    string    `json:"location" firestore:"location"`
	Role        string    `json:"role" firestore:"role"`
	Rating      float64   `json:"rating,omitempty" firestore:"rating"`
	RatingCount int       `json:"rating_count" firestore:"ratingCount"`
	Favorites   []string  `json:"favorites" firestore:"favorites"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// DefaultAvatar is the placeholder picture assigned at registration.
func DefaultAvatar(uid string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/400/400", uid)
}

// Normalize fills defaults for documents written by older clients.
func (u *User) Normalize() {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Location == "" {
		u.Location = DefaultLocation
	}
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	if u.RatingCount < 0 {
		u.RatingCount = 0
	}
	if u.RatingCount == 0 {
		u.Rating = 0
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasFavorite(productID string) bool {
	for _, id := range u.Favorites {
		if id == productID {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
