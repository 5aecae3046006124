package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Email           string         `json:"email" gorm:"uniqueIndex"`
	Password        string         `json:"password"`
	AvatarURL       string         `json:"avatarURL"`
	Bio             string         `json:"bio"`
	Properties      []Property     `json:"properties" gorm:"foreignKey:HostID;references:ID"`
	SavedProperties datatypes.JSON `json:"savedProperties"`
	Role            string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, host, admin
}

// Custom JSON marshaling: saved properties render as an array and the
// password hash never leaves the server.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password        string `json:"password,omitempty"`
		SavedProperties []int  `json:"savedProperties,omitempty"`
		*Alias
	}{
		SavedProperties: []int{},
		Alias:           (*Alias)(u),
	}

	if u.SavedProperties != nil {
		var saved []int
		if err := json.Unmarshal(u.SavedProperties, &saved); err == nil {
			aux.SavedProperties = saved
		}
	}

	return json.Marshal(aux)
}
