package users

// UserRepo stores user records. Lookups of unknown users return
// errors.ErrNotFound.
type UserRepo interface {
	Upsert(user *User) error
	GetByName(name string) (*User, error)
	GetByID(id string) (*User, error)
	List(offset, limit int) ([]*User, error)
}
