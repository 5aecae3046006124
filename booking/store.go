package booking

import (
	"context"
	"errors"
	"time"

	"airbnb-clone-server/models"

	"gorm.io/gorm"
)

// Store is the booking repository consumed by the core. Every write is
// all-or-nothing at the storage layer; a failed call leaves no partial
// record.
type Store interface {
	FindBooking(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	SaveBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, b *models.Booking) error
	// CountOverlapping counts pending/confirmed bookings on the property
	// whose [check_in, check_out) range overlaps the given one, excluding
	// excludeID when non-zero.
	CountOverlapping(ctx context.Context, propertyID uint, checkIn, checkOut time.Time, excludeID uint) (int64, error)
	// ElapsedConfirmed returns confirmed bookings whose check-out is not
	// after the cutoff.
	ElapsedConfirmed(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

// PropertyFinder is the property-catalog lookup the core consumes. The
// catalog itself is an external collaborator.
type PropertyFinder interface {
	FindProperty(ctx context.Context, id uint) (*models.Property, error)
}

// GormStore backs Store and PropertyFinder with the shared gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("booking")
		}
		return nil, err
	}
	return &b, nil
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *GormStore) DeleteBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Delete(b).Error
}

func (s *GormStore) CountOverlapping(ctx context.Context, propertyID uint, checkIn, checkOut time.Time, excludeID uint) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("property_id = ? AND status IN ? AND check_in < ? AND check_out > ?",
			propertyID, ActiveStatuses, checkOut, checkIn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n, err
}

func (s *GormStore) ElapsedConfirmed(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("status = ? AND check_out <= ?", string(StatusConfirmed), cutoff).
		Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) FindProperty(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("property")
		}
		return nil, err
	}
	return &p, nil
}
