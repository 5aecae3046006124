package booking

import (
	"context"
	"fmt"
	"time"

	"airbnb-clone-server/models"

	"github.com/google/uuid"
)

// Payment status values, tracked independently of the booking status. A
// confirmed booking may still have pending payment.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// Service owns booking admission and the lifecycle state machine. It holds
// no mutable state of its own besides the per-property locks and is safe to
// call from concurrent requests.
type Service struct {
	store         Store
	props         PropertyFinder
	propertyLocks *keyedLocks
	bookingLocks  *keyedLocks
	now           func() time.Time
}

func NewService(store Store, props PropertyFinder) *Service {
	return &Service{
		store:         store,
		props:         props,
		propertyLocks: newKeyedLocks(),
		bookingLocks:  newKeyedLocks(),
		now:           time.Now,
	}
}

// CreateInput is a validated booking request. Counts are checked at the
// transport boundary (adults >= 1, children/infants >= 0).
type CreateInput struct {
	PropertyID      uint
	GuestID         uint
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	Infants         int
	SpecialRequests string
}

// Create admits a stay or rejects it with a typed error. On success exactly
// one consistent record exists; on failure none does. The initial status is
// pending, or confirmed when the property is instant-bookable.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	property, err := s.props.FindProperty(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != "active" {
		return nil, errForbidden("property.status", "property is not open for booking")
	}
	if property.HostID == in.GuestID {
		return nil, errForbidden("guestID", "you cannot book your own property")
	}

	checkIn := DateOnly(in.CheckIn)
	checkOut := DateOnly(in.CheckOut)
	if err := s.validateStay(property, checkIn, checkOut); err != nil {
		return nil, err
	}

	totalGuests := in.Adults + in.Children + in.Infants
	if property.Capacity > 0 && totalGuests > property.Capacity {
		return nil, errCapacityExceeded(property.Capacity)
	}

	nights := Nights(checkIn, checkOut)
	price := ComputePrice(property.NightlyPrice, nights, property.CleaningFee, property.ServiceFee, property.Taxes)

	status := StatusPending
	if property.InstantBookable {
		status = StatusConfirmed
	}

	policy := property.CancellationPolicy
	if policy == "" {
		policy = PolicyModerate
	}
	currency := property.Currency
	if currency == "" {
		currency = "USD"
	}

	b := &models.Booking{
		Reference:          uuid.NewString(),
		PropertyID:         property.ID,
		GuestID:            in.GuestID,
		HostID:             property.HostID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Adults:             in.Adults,
		Children:           in.Children,
		Infants:            in.Infants,
		TotalAmount:        price.Total,
		Currency:           currency,
		NightlyRate:        price.NightlyRate,
		CleaningFee:        price.CleaningFee,
		ServiceFee:         price.ServiceFee,
		Taxes:              price.Taxes,
		Status:             string(status),
		PaymentStatus:      PaymentPending,
		SpecialRequests:    in.SpecialRequests,
		CancellationPolicy: policy,
		IsInstantBook:      property.InstantBookable,
	}

	// Serialize the conflict check and the insert for this property only.
	lock := s.propertyLocks.get(property.ID)
	lock.Lock()
	defer lock.Unlock()

	conflict, err := HasConflict(ctx, s.store, property.ID, checkIn, checkOut, 0)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if conflict {
		return nil, errConflict()
	}

	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return b, nil
}

// UpdateStatus drives a lifecycle transition on behalf of an actor. The
// actor's role must match the booking's guest or host id; system transitions
// carry no actor id.
func (s *Service) UpdateStatus(ctx context.Context, bookingID, actorID uint, role Actor, newStatus Status, reason string) (*models.Booking, error) {
	// Serialize read-modify-save per booking: two racing cancels must not
	// both pass the transition check and overwrite each other's metadata.
	lock := s.bookingLocks.get(bookingID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch role {
	case ActorGuest:
		if b.GuestID != actorID {
			return nil, errForbidden("actorID", "only the booking's guest may do this")
		}
	case ActorHost:
		if b.HostID != actorID {
			return nil, errForbidden("actorID", "only the property's host may do this")
		}
	case ActorSystem:
		// trusted internal trigger
	default:
		return nil, errForbidden("actorRole", "unknown actor role")
	}

	if err := CheckTransition(Status(b.Status), newStatus, role); err != nil {
		return nil, err
	}

	if newStatus == StatusCancelled {
		pct := RefundPercentage(b.CancellationPolicy, b.CheckIn, s.now())
		refund := RefundAmount(b.TotalAmount, pct)
		b.CancellationReason = reason
		b.RefundAmount = &refund
		if b.PaymentStatus == PaymentPaid && refund > 0 {
			b.PaymentStatus = PaymentRefunded
		}
	}

	b.Status = string(newStatus)
	if err := s.store.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	return b, nil
}

// UpdateInput patches a pending booking. Nil fields are left unchanged.
type UpdateInput struct {
	CheckIn         *time.Time
	CheckOut        *time.Time
	Adults          *int
	Children        *int
	Infants         *int
	SpecialRequests *string
}

// UpdateDetails lets the guest adjust a still-pending booking. The stored
// record is not touched until the whole revalidation passes: dates, stay
// length, capacity and a conflict check excluding the booking itself. Any
// date or guest change re-snapshots the price from the current property
// rates.
func (s *Service) UpdateDetails(ctx context.Context, bookingID, guestID uint, patch UpdateInput) (*models.Booking, error) {
	// Booking lock first, property lock second; Create takes only the
	// property lock so the ordering cannot deadlock.
	lock := s.bookingLocks.get(bookingID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guestID {
		return nil, errForbidden("actorID", "only the booking's guest may modify it")
	}
	if Status(b.Status) != StatusPending {
		return nil, errImmutableState(Status(b.Status))
	}

	checkIn, checkOut := b.CheckIn, b.CheckOut
	adults, children, infants := b.Adults, b.Children, b.Infants
	if patch.CheckIn != nil {
		checkIn = DateOnly(*patch.CheckIn)
	}
	if patch.CheckOut != nil {
		checkOut = DateOnly(*patch.CheckOut)
	}
	if patch.Adults != nil {
		adults = *patch.Adults
	}
	if patch.Children != nil {
		children = *patch.Children
	}
	if patch.Infants != nil {
		infants = *patch.Infants
	}

	datesChanged := !checkIn.Equal(b.CheckIn) || !checkOut.Equal(b.CheckOut)
	guestsChanged := adults != b.Adults || children != b.Children || infants != b.Infants

	if datesChanged || guestsChanged {
		property, err := s.props.FindProperty(ctx, b.PropertyID)
		if err != nil {
			return nil, err
		}
		if err := s.validateStay(property, checkIn, checkOut); err != nil {
			return nil, err
		}
		if property.Capacity > 0 && adults+children+infants > property.Capacity {
			return nil, errCapacityExceeded(property.Capacity)
		}

		plock := s.propertyLocks.get(b.PropertyID)
		plock.Lock()
		defer plock.Unlock()

		conflict, err := HasConflict(ctx, s.store, b.PropertyID, checkIn, checkOut, b.ID)
		if err != nil {
			return nil, fmt.Errorf("check availability: %w", err)
		}
		if conflict {
			return nil, errConflict()
		}

		price := ComputePrice(property.NightlyPrice, Nights(checkIn, checkOut),
			property.CleaningFee, property.ServiceFee, property.Taxes)
		b.TotalAmount = price.Total
		b.NightlyRate = price.NightlyRate
		b.CleaningFee = price.CleaningFee
		b.ServiceFee = price.ServiceFee
		b.Taxes = price.Taxes
	}

	b.CheckIn = checkIn
	b.CheckOut = checkOut
	b.Adults = adults
	b.Children = children
	b.Infants = infants
	if patch.SpecialRequests != nil {
		b.SpecialRequests = *patch.SpecialRequests
	}

	if err := s.store.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	return b, nil
}

// Delete withdraws a booking entirely. Only the guest may do it, and only
// while the booking is still pending.
func (s *Service) Delete(ctx context.Context, bookingID, guestID uint) error {
	lock := s.bookingLocks.get(bookingID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.GuestID != guestID {
		return errForbidden("actorID", "only the booking's guest may delete it")
	}
	if Status(b.Status) != StatusPending {
		return errImmutableState(Status(b.Status))
	}
	if err := s.store.DeleteBooking(ctx, b); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

// MarkPaid records a successful charge reported by the payment subsystem.
// The core never calls the gateway itself.
func (s *Service) MarkPaid(ctx context.Context, bookingID uint, paymentReference string) (*models.Booking, error) {
	lock := s.bookingLocks.get(bookingID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != PaymentPending && b.PaymentStatus != PaymentFailed {
		return nil, &Error{Code: CodeInvalidTransition, Field: "paymentStatus",
			Message: "payment is already " + b.PaymentStatus}
	}
	b.PaymentStatus = PaymentPaid
	b.PaymentReference = paymentReference
	if err := s.store.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	return b, nil
}

// MarkPaymentFailed records a failed charge reported by the payment
// subsystem.
func (s *Service) MarkPaymentFailed(ctx context.Context, bookingID uint) (*models.Booking, error) {
	lock := s.bookingLocks.get(bookingID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != PaymentPending {
		return nil, &Error{Code: CodeInvalidTransition, Field: "paymentStatus",
			Message: "payment is already " + b.PaymentStatus}
	}
	b.PaymentStatus = PaymentFailed
	if err := s.store.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	return b, nil
}

// CompleteElapsed moves confirmed bookings whose stay has ended to
// completed. Meant to be called by an external scheduler; the transition
// itself lives here.
func (s *Service) CompleteElapsed(ctx context.Context) ([]models.Booking, error) {
	elapsed, err := s.store.ElapsedConfirmed(ctx, DateOnly(s.now()))
	if err != nil {
		return nil, fmt.Errorf("list elapsed bookings: %w", err)
	}

	var completed []models.Booking
	for i := range elapsed {
		b, err := s.completeOne(ctx, elapsed[i].ID)
		if err != nil {
			return completed, err
		}
		if b != nil {
			completed = append(completed, *b)
		}
	}
	return completed, nil
}

// completeOne re-reads the booking under its lock so a cancel racing the
// scheduler cannot be overwritten; a booking no longer confirmed is skipped.
func (s *Service) completeOne(ctx context.Context, bookingID uint) (*models.Booking, error) {
	lock := s.bookingLocks.get(bookingID)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		if IsCode(err, CodeNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find booking %d: %w", bookingID, err)
	}
	if err := CheckTransition(Status(b.Status), StatusCompleted, ActorSystem); err != nil {
		return nil, nil
	}
	b.Status = string(StatusCompleted)
	if err := s.store.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking %d: %w", b.ID, err)
	}
	return b, nil
}

// validateStay checks date ordering, the future-check-in rule and the
// property's stay-length bounds, all with date-only semantics.
func (s *Service) validateStay(property *models.Property, checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return errInvalidDateRange("checkOut", "check-out must be after check-in")
	}
	if !checkIn.After(DateOnly(s.now())) {
		return errInvalidDateRange("checkIn", "check-in must be in the future")
	}

	nights := Nights(checkIn, checkOut)
	if property.MinStay > 0 && nights < property.MinStay {
		return errStayLength(fmt.Sprintf("minimum stay is %d nights", property.MinStay))
	}
	if property.MaxStay > 0 && nights > property.MaxStay {
		return errStayLength(fmt.Sprintf("maximum stay is %d nights", property.MaxStay))
	}
	return nil
}
