package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	HostID       uint    `json:"hostID" gorm:"not null;index"`
	Title        string  `json:"title"`
	Description  string  `json:"description" gorm:"type:text"`
	PropertyType string  `json:"propertyType"` // entire_place, private_room, shared_room
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Country      string  `json:"country"`
	Lat          float32 `json:"lat"`
	Lng          float32 `json:"lng"`
	Capacity     int     `json:"capacity"`
	Bedrooms     int     `json:"bedrooms"`
	Beds         int     `json:"beds"`
	Bathrooms    float32 `json:"bathrooms"`

	// Pricing. NightlyPrice is the current rate; bookings snapshot it at
	// creation time so later edits never change historical totals.
	NightlyPrice float64 `json:"nightlyPrice"`
	CleaningFee  float64 `json:"cleaningFee"`
	ServiceFee   float64 `json:"serviceFee"`
	Taxes        float64 `json:"taxes"`
	Currency     string  `json:"currency" gorm:"type:varchar(3);default:'USD'"`

	// Booking rules
	MinStay            int    `json:"minStay" gorm:"default:1"`
	MaxStay            int    `json:"maxStay" gorm:"default:0"` // 0 = unlimited
	InstantBookable    bool   `json:"instantBookable" gorm:"default:false"`
	CancellationPolicy string `json:"cancellationPolicy" gorm:"type:varchar(20);default:'moderate'"` // flexible, moderate, strict, super_strict

	Amenities  datatypes.JSON `json:"amenities"`
	HouseRules string         `json:"houseRules" gorm:"type:text"`
	Images     datatypes.JSON `json:"images"`

	// Only active properties are bookable.
	Status string  `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, active, inactive, rejected
	Rating float32 `json:"rating"`

	Reviews  []Review  `json:"reviews"`
	Bookings []Booking `json:"bookings"`
	Host     User      `json:"host" gorm:"foreignKey:HostID;references:ID"`
}

// Custom JSON marshaling so jsonb columns serialize as arrays and the host
// relation never recurses back into its properties.
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images    []string `json:"images"`
		Amenities []string `json:"amenities"`
		Host      *User    `json:"host,omitempty"`
		*Alias
	}{
		Images:    []string{},
		Amenities: []string{},
		Host:      nil,
		Alias:     (*Alias)(p),
	}

	if p.Images != nil {
		var images []string
		if err := json.Unmarshal(p.Images, &images); err == nil {
			aux.Images = images
		}
	}

	if p.Amenities != nil {
		var amenities []string
		if err := json.Unmarshal(p.Amenities, &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	if p.Host.ID > 0 {
		hostCopy := p.Host
		hostCopy.Properties = nil
		aux.Host = &hostCopy
	}

	return json.Marshal(aux)
}
