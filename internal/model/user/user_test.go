package user_test

import (
	"filevault/internal/model/user"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserModel(t *testing.T) {
	t.Run("User struct fields", func(t *testing.T) {
		u := user.User{
			ID:           1,
			Username:     "testuser",
			PasswordHash: "hashedpassword",
		}

		assert.Equal(t, int64(1), u.ID)
		assert.Equal(t, "testuser", u.Username)
		assert.Equal(t, "hashedpassword", u.PasswordHash)
	})

	t.Run("Identity drops the hash", func(t *testing.T) {
		u := &user.User{ID: 7, Username: "alice", PasswordHash: "$2a$10$x"}

		assert.Equal(t, user.Identity{ID: 7, Username: "alice"}, u.Identity())
	})
}
