// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// User is created at signup and never changes afterwards, apart from a
// password hash upgrade on login.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
