package main

// Role represents the access level of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a record of the credential directory. Password is opaque to the
// stores: only the directory itself ever interprets it.
type User struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	Email         string `json:"email"`
	BorrowedBooks []int  `json:"borrowedBooks"`
}

// Session is the authenticated principal kept by the identity store for
// the lifetime of a login. It is a credential-stripped projection of the
// matched directory record: Password is always empty, including in the
// durably persisted copy.
type Session struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	Email         string `json:"email"`
	BorrowedBooks []int  `json:"borrowedBooks"`
}

// NewSession projects a directory record into a session, dropping the credential.
func NewSession(u User) Session {
	return Session{
		ID:            u.ID,
		Username:      u.Username,
		Password:      "",
		Name:          u.Name,
		Role:          u.Role,
		Email:         u.Email,
		BorrowedBooks: append([]int(nil), u.BorrowedBooks...),
	}
}
