package services

import (
	"fmt"
	"log"

	"airbnb-clone-server/models"
	"airbnb-clone-server/storage"
)

// NotificationService records booking events as in-app notifications.
// Push/messaging transports live outside this server.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyBookingRequested tells the host a new request arrived (or, for
// instant-book, that a stay was confirmed directly).
func (s *NotificationService) NotifyBookingRequested(booking *models.Booking, property *models.Property) {
	title := "New Booking Request"
	message := fmt.Sprintf("You have a new booking request for %s from %s to %s",
		property.Title, booking.CheckIn.Format("Jan 2, 2006"), booking.CheckOut.Format("Jan 2, 2006"))
	if booking.IsInstantBook {
		title = "New Instant Booking"
		message = fmt.Sprintf("%s was instantly booked from %s to %s",
			property.Title, booking.CheckIn.Format("Jan 2, 2006"), booking.CheckOut.Format("Jan 2, 2006"))
	}

	s.record(models.Notification{
		UserID:  booking.HostID,
		Title:   title,
		Message: message,
		Type:    "booking_request",
		RefID:   booking.ID,
		RefType: "booking",
	})
}

// NotifyBookingStatus tells the guest about a status change.
func (s *NotificationService) NotifyBookingStatus(booking *models.Booking) {
	s.record(models.Notification{
		UserID:  booking.GuestID,
		Title:   "Booking Status Updated",
		Message: fmt.Sprintf("Your booking %s is now %s", booking.Reference, booking.Status),
		Type:    "booking_status",
		RefID:   booking.ID,
		RefType: "booking",
	})
}

// NotifyBookingCancelled tells the guest a booking was cancelled and what
// will be refunded.
func (s *NotificationService) NotifyBookingCancelled(booking *models.Booking) {
	refund := 0.0
	if booking.RefundAmount != nil {
		refund = *booking.RefundAmount
	}
	s.record(models.Notification{
		UserID:  booking.GuestID,
		Title:   "Booking Cancelled",
		Message: fmt.Sprintf("Your booking %s has been cancelled. Refund: %.2f %s", booking.Reference, refund, booking.Currency),
		Type:    "booking_cancelled",
		RefID:   booking.ID,
		RefType: "booking",
	})
}

func (s *NotificationService) record(n models.Notification) {
	if err := storage.DB.Create(&n).Error; err != nil {
		log.Printf("notification write failed for user %d: %v", n.UserID, err)
	}
}
