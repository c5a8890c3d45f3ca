package domain

import "time"

// User is the ownership boundary for every category and transaction
type User struct {
	ID        int32     `json:"id"`
	Auth0ID   string    `json:"auth0Id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(id int32) (*User, error)
	GetByAuth0ID(auth0ID string) (*User, error)
	// CreateWithCategories inserts the user and its seed categories atomically.
	CreateWithCategories(user *User, categories []CategorySeed) (*User, error)
}
