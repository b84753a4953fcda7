package adminapi

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
)

// ID is a resource identifier. The admin server sends integers and the
// location service sends strings, so both decode into the same type.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Int returns the numeric form of the id, or 0 when it is not numeric.
func (id ID) Int() int64 {
	n, _ := strconv.ParseInt(string(id), 10, 64)
	return n
}

// Permissions maps an account id to the permission names held in it.
type Permissions map[string][]string

type Email struct {
	ID          ID     `json:"id"`
	Email       string `json:"email"`
	Primary     bool   `json:"primary"`
	Active      bool   `json:"active"`
	CreatedDate string `json:"created_date,omitempty"`
}

type Grant struct {
	ID                 ID      `json:"id"`
	AccountID          ID      `json:"account_id"`
	AccountName        string  `json:"account_name"`
	AccountDisplayName string  `json:"account_display_name"`
	Active             bool    `json:"active"`
	GrantedDate        string  `json:"granted_date"`
	RevokedDate        *string `json:"revoked_date"`
	RoleID             ID      `json:"role_id"`
	RoleName           string  `json:"role_name"`
	UserID             ID      `json:"user_id"`
}

// UserProfile is the caller's own user record.
type UserProfile struct {
	ID           ID          `json:"id"`
	Name         string      `json:"name"`
	DisplayName  string      `json:"display_name"`
	PersonalName *string     `json:"personal_name"`
	FamilyNames  *string     `json:"family_names"`
	Emails       []Email     `json:"emails"`
	Type         string      `json:"type"`
	Active       bool        `json:"active"`
	Deleted      bool        `json:"deleted"`
	CreatedDate  string      `json:"created_date"`
	ModifiedDate string      `json:"modified_date"`
	Grants       []Grant     `json:"grants"`
	Permissions  Permissions `json:"permissions"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged by the server.
type ProfileUpdate struct {
	DisplayName  *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=255"`
	PersonalName *string `json:"personal_name,omitempty" validate:"omitempty,max=255"`
	FamilyNames  *string `json:"family_names,omitempty" validate:"omitempty,max=255"`
}

func (u ProfileUpdate) empty() bool {
	return u.DisplayName == nil && u.PersonalName == nil && u.FamilyNames == nil
}

type Account struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Active       bool   `json:"active"`
	CreatedDate  string `json:"created_date"`
	ModifiedDate string `json:"modified_date"`
}

// AccountUser is a member of the caller's active account together with the
// grants it holds there.
type AccountUser struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Email        string  `json:"email"`
	CreatedDate  string  `json:"created_date"`
	ModifiedDate string  `json:"modified_date"`
	Grants       []Grant `json:"grants"`
}

type Role struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	DisplayName  string   `json:"display_name"`
	Active       bool     `json:"active"`
	CreatedDate  string   `json:"created_date"`
	ModifiedDate string   `json:"modified_date"`
	Permissions  []string `json:"permissions"`
}

type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type AdminDistrict struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type Address struct {
	CountryRegion *struct {
		Name string `json:"name"`
	} `json:"countryRegion,omitempty"`
	AddressLine      string          `json:"addressLine,omitempty"`
	AdminDistricts   []AdminDistrict `json:"adminDistricts,omitempty"`
	FormattedAddress string          `json:"formattedAddress,omitempty"`
	Locality         string          `json:"locality,omitempty"`
	PostalCode       string          `json:"postalCode,omitempty"`
	StreetName       string          `json:"streetName,omitempty"`
	StreetNumber     string          `json:"streetNumber,omitempty"`
}

type Location struct {
	ID           ID        `json:"_id"`
	Name         string    `json:"_name"`
	DisplayName  string    `json:"display_name"`
	AccountID    ID        `json:"account_id"`
	CreatedBy    string    `json:"created_by"`
	CreatedDate  string    `json:"created_date"`
	ModifiedDate string    `json:"modified_date"`
	Deleted      bool      `json:"deleted"`
	Active       bool      `json:"active"`
	GeoPoint     *GeoPoint `json:"geo_point,omitempty"`
	Address      *Address  `json:"address,omitempty"`
}
