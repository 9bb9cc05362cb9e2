package user

// User is a stored identity record.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Identity is the public part of a User, the one carried by tokens and request
// contexts.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}
