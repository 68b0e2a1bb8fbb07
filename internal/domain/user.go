package domain

// User is an account that owns requests.
type User struct {
	ID           int64
	Firstname    string
	Lastname     string
	Email        string
	PasswordHash string
}
