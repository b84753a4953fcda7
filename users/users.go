package users

import (
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserType string

const (
	TypePerson  UserType = "person"
	TypeService UserType = "service"
)

type Email struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Primary     bool      `json:"primary"`
	Active      bool      `json:"active"`
	CreatedDate time.Time `json:"created_date"`
}

// Grant gives a user a role within one account.
type Grant struct {
	ID                 string     `json:"id"`
	AccountID          string     `json:"account_id"`
	AccountName        string     `json:"account_name"`
	AccountDisplayName string     `json:"account_display_name"`
	RoleID             string     `json:"role_id"`
	RoleName           string     `json:"role_name"`
	Permissions        []string   `json:"-"`
	Active             bool       `json:"active"`
	GrantedDate        time.Time  `json:"granted_date"`
	RevokedDate        *time.Time `json:"revoked_date"`
}

type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"` // Login name, unique
	DisplayName  string   `json:"display_name"`
	PersonalName *string  `json:"personal_name"`
	FamilyNames  *string  `json:"family_names"`
	Type         UserType `json:"type"`
	Emails       []Email  `json:"emails"`
	PasswordHash string   `json:"-"` // Never serialised
	Active       bool     `json:"active"`
	Deleted      bool     `json:"deleted"`
	Grants       []Grant  `json:"grants"`
	// DefaultAccountID is the account a fresh login is scoped to
	DefaultAccountID string    `json:"-"`
	CreatedDate      time.Time `json:"created_date"`
	ModifiedDate     time.Time `json:"modified_date"`
	LastLogin        time.Time `json:"-"`
}

// Profile is the user as returned by GET /api/v1/user/me.
type Profile struct {
	*User
	Permissions map[string][]string `json:"permissions"`
}

func (u *User) Profile() Profile {
	return Profile{User: u, Permissions: u.Permissions()}
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.Active && !u.Deleted
}

// Permissions collects the permissions of every active grant, keyed by
// account id.
func (u *User) Permissions() map[string][]string {
	perms := make(map[string][]string)
	for _, g := range u.Grants {
		if !g.Active || g.RevokedDate != nil {
			continue
		}
		for _, p := range g.Permissions {
			if !slices.Contains(perms[g.AccountID], p) {
				perms[g.AccountID] = append(perms[g.AccountID], p)
			}
		}
	}
	return perms
}

// AccountIDs lists the accounts the user holds an active grant in.
func (u *User) AccountIDs() []string {
	var ids []string
	for _, g := range u.Grants {
		if g.Active && g.RevokedDate == nil && !slices.Contains(ids, g.AccountID) {
			ids = append(ids, g.AccountID)
		}
	}
	return ids
}

func (u *User) PrimaryEmail() string {
	for _, e := range u.Emails {
		if e.Primary {
			return e.Email
		}
	}
	return ""
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
