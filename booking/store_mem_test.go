package booking

import (
	"context"
	"sync"
	"time"

	"airbnb-clone-server/models"
)

// memStore is an in-memory Store + PropertyFinder for service tests. It is
// internally consistent under concurrent use, but deliberately leaves the
// read-then-write gaps open: countDelay widens the window between the
// conflict check and the insert, findDelay the one between a read and its
// save, so the stress tests would catch a missing lock.
type memStore struct {
	mu         sync.Mutex
	nextID     uint
	bookings   map[uint]*models.Booking
	properties map[uint]*models.Property
	countDelay time.Duration
	findDelay  time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		bookings:   make(map[uint]*models.Booking),
		properties: make(map[uint]*models.Property),
	}
}

func (s *memStore) addProperty(p *models.Property) *models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.properties[p.ID] = p
	return p
}

func (s *memStore) FindBooking(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	b, ok := s.bookings[id]
	if !ok {
		s.mu.Unlock()
		return nil, errNotFound("booking")
	}
	cp := *b
	s.mu.Unlock()

	if s.findDelay > 0 {
		time.Sleep(s.findDelay)
	}
	return &cp, nil
}

func (s *memStore) CreateBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) SaveBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) DeleteBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings, b.ID)
	return nil
}

func (s *memStore) CountOverlapping(_ context.Context, propertyID uint, checkIn, checkOut time.Time, excludeID uint) (int64, error) {
	s.mu.Lock()
	var n int64
	for _, b := range s.bookings {
		if b.PropertyID != propertyID || b.ID == excludeID {
			continue
		}
		if b.Status != string(StatusPending) && b.Status != string(StatusConfirmed) {
			continue
		}
		if Overlaps(checkIn, checkOut, b.CheckIn, b.CheckOut) {
			n++
		}
	}
	s.mu.Unlock()

	if s.countDelay > 0 {
		time.Sleep(s.countDelay)
	}
	return n, nil
}

func (s *memStore) ElapsedConfirmed(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.Status == string(StatusConfirmed) && !b.CheckOut.After(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) FindProperty(_ context.Context, id uint) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, errNotFound("property")
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}
