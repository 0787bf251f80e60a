package users

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID            string
	Email         string
	UserName      string
	Name          string
	Lastname      string
	Role          Role
	EmailVerified bool
	PasswordHash  []byte
	CreatedAt     time.Time
}

// Clone returns a copy that does not share the password hash.
func (u *User) Clone() *User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}
