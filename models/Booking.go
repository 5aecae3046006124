package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Booking is a reservation contract between a guest and a host for a
// property over a [CheckIn, CheckOut) date range.
type Booking struct {
	gorm.Model
	Reference  string `json:"reference" gorm:"type:varchar(36);uniqueIndex"`
	PropertyID uint   `json:"propertyID" gorm:"not null;index:idx_bookings_property_dates"`
	GuestID    uint   `json:"guestID" gorm:"not null;index"`
	HostID     uint   `json:"hostID" gorm:"not null;index"`

	CheckIn  time.Time `json:"checkIn" gorm:"index:idx_bookings_property_dates"`
	CheckOut time.Time `json:"checkOut" gorm:"index:idx_bookings_property_dates"`

	Adults   int `json:"adults" gorm:"not null"`
	Children int `json:"children" gorm:"default:0"`
	Infants  int `json:"infants" gorm:"default:0"`

	// Price snapshot taken when the booking is created or modified. The
	// breakdown is never recomputed from live property data afterwards.
	TotalAmount float64 `json:"totalAmount"`
	Currency    string  `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	NightlyRate float64 `json:"nightlyRate"`
	CleaningFee float64 `json:"cleaningFee"`
	ServiceFee  float64 `json:"serviceFee"`
	Taxes       float64 `json:"taxes"`

	Status        string `json:"status" gorm:"type:varchar(20);default:'pending';index"`        // pending, confirmed, cancelled, completed, rejected
	PaymentStatus string `json:"paymentStatus" gorm:"type:varchar(20);default:'pending';index"` // pending, paid, refunded, failed

	PaymentReference string `json:"paymentReference" gorm:"type:varchar(64)"`

	SpecialRequests string `json:"specialRequests" gorm:"size:500"`

	// Populated when the booking enters cancelled.
	CancellationReason string   `json:"cancellationReason" gorm:"size:200"`
	CancellationPolicy string   `json:"cancellationPolicy" gorm:"type:varchar(20);default:'moderate'"`
	RefundAmount       *float64 `json:"refundAmount"`

	IsInstantBook bool `json:"isInstantBook" gorm:"default:false"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Guest    *User     `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
	Host     *User     `json:"host,omitempty" gorm:"foreignKey:HostID"`
}

// TotalGuests counts every occupant, infants included.
func (b *Booking) TotalGuests() int {
	return b.Adults + b.Children + b.Infants
}

// Nights returns the calendar nights between check-in and check-out. Partial
// days round up, matching how the booking core counts nights.
func (b *Booking) Nights() int {
	return int(math.Ceil(b.CheckOut.Sub(b.CheckIn).Hours() / 24))
}
