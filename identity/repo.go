package identity

// Repo provides access to user data
type Repo interface {
	Upsert(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Delete(email string) error
}
