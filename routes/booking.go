package routes

import (
	"log"
	"time"

	"airbnb-clone-server/booking"
	"airbnb-clone-server/models"
	"airbnb-clone-server/services"
	"airbnb-clone-server/storage"
	"airbnb-clone-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// Bookings is the service instance wired in main after storage init.
var Bookings *booking.Service

// handleBookingError maps the core's error taxonomy onto HTTP. Anything
// without a code is an internal failure.
func handleBookingError(err error, ctx iris.Context) {
	switch booking.CodeOf(err) {
	case booking.CodeNotFound:
		utils.CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
	case booking.CodeForbidden:
		utils.CreateError(iris.StatusForbidden, "Forbidden", err.Error(), ctx)
	case booking.CodeConflict:
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
	case booking.CodeInvalidTransition:
		utils.CreateError(iris.StatusConflict, "Invalid Transition", err.Error(), ctx)
	case booking.CodeInvalidDateRange, booking.CodeStayLength,
		booking.CodeCapacityExceeded, booking.CodeImmutableState:
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}

type CreateBookingInput struct {
	PropertyID      uint      `json:"propertyID" validate:"required"`
	CheckIn         time.Time `json:"checkIn" validate:"required"`
	CheckOut        time.Time `json:"checkOut" validate:"required"`
	Adults          int       `json:"adults" validate:"required,gte=1,lte=16"`
	Children        int       `json:"children" validate:"gte=0"`
	Infants         int       `json:"infants" validate:"gte=0"`
	SpecialRequests string    `json:"specialRequests" validate:"max=500"`
}

func CreateBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	b, err := Bookings.Create(ctx.Request().Context(), booking.CreateInput{
		PropertyID:      input.PropertyID,
		GuestID:         claims.ID,
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		Adults:          input.Adults,
		Children:        input.Children,
		Infants:         input.Infants,
		SpecialRequests: input.SpecialRequests,
	})
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	var property models.Property
	if res := storage.DB.First(&property, b.PropertyID); res.Error == nil {
		services.NewNotificationService().NotifyBookingRequested(b, &property)
	} else {
		log.Printf("booking %d: skipping host notification, property %d load failed: %v",
			b.ID, b.PropertyID, res.Error)
	}

	// Reload with relationships for the response; the booking itself is
	// already committed, so a failed reload only loses the embedded relations.
	if res := storage.DB.Preload("Property").Preload("Guest").First(b, b.ID); res.Error != nil {
		log.Printf("booking %d: reload with relations failed: %v", b.ID, res.Error)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(b)
}

// GetBookings lists the authenticated user's bookings; role=guest|host
// narrows the side, status narrows the state.
func GetBookings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	role := ctx.URLParamDefault("role", "")
	status := ctx.URLParamDefault("status", "")

	q := storage.DB.Preload("Property").Preload("Guest").Preload("Host").Order("created_at DESC")
	switch role {
	case "guest":
		q = q.Where("guest_id = ?", claims.ID)
	case "host":
		q = q.Where("host_id = ?", claims.ID)
	default:
		q = q.Where("guest_id = ? OR host_id = ?", claims.ID, claims.ID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	if res := q.Find(&bookings); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(bookings)
}

func GetBookingByID(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid booking ID", ctx)
		return
	}

	var b models.Booking
	if res := storage.DB.Preload("Property").Preload("Guest").Preload("Host").First(&b, id); res.Error != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if b.GuestID != claims.ID && b.HostID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Access denied", ctx)
		return
	}

	ctx.JSON(b)
}

type UpdateBookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected cancelled"`
	Reason string `json:"reason" validate:"max=200"`
}

// UpdateBookingStatus drives host confirm/reject and guest/host cancel. The
// actor's role against this booking is derived from the token id.
func UpdateBookingStatus(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid booking ID", ctx)
		return
	}

	var input UpdateBookingStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.Booking
	if res := storage.DB.First(&existing, id); res.Error != nil {
		utils.CreateNotFound(ctx)
		return
	}

	role := booking.ActorGuest
	if existing.HostID == claims.ID {
		role = booking.ActorHost
	}

	b, err := Bookings.UpdateStatus(ctx.Request().Context(), id, claims.ID, role,
		booking.Status(input.Status), input.Reason)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	notifier := services.NewNotificationService()
	if b.Status == string(booking.StatusCancelled) {
		notifier.NotifyBookingCancelled(b)
	} else {
		notifier.NotifyBookingStatus(b)
	}

	ctx.JSON(b)
}

type UpdateBookingInput struct {
	CheckIn         *time.Time `json:"checkIn"`
	CheckOut        *time.Time `json:"checkOut"`
	Adults          *int       `json:"adults" validate:"omitempty,gte=1,lte=16"`
	Children        *int       `json:"children" validate:"omitempty,gte=0"`
	Infants         *int       `json:"infants" validate:"omitempty,gte=0"`
	SpecialRequests *string    `json:"specialRequests" validate:"omitempty,max=500"`
}

// UpdateBooking lets the guest adjust a pending booking; the core re-checks
// availability and re-prices before anything is stored.
func UpdateBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid booking ID", ctx)
		return
	}

	var input UpdateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	b, err := Bookings.UpdateDetails(ctx.Request().Context(), id, claims.ID, booking.UpdateInput{
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		Adults:          input.Adults,
		Children:        input.Children,
		Infants:         input.Infants,
		SpecialRequests: input.SpecialRequests,
	})
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	ctx.JSON(b)
}

// DeleteBooking withdraws a still-pending booking (guest only).
func DeleteBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid booking ID", ctx)
		return
	}

	if err := Bookings.Delete(ctx.Request().Context(), id, claims.ID); err != nil {
		handleBookingError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Booking deleted successfully"})
}

// CompleteElapsedBookings is a cron-like endpoint moving confirmed stays
// past their check-out to completed (can be called by a scheduler).
func CompleteElapsedBookings(ctx iris.Context) {
	completed, err := Bookings.CompleteElapsed(ctx.Request().Context())
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notifier := services.NewNotificationService()
	for i := range completed {
		notifier.NotifyBookingStatus(&completed[i])
	}

	ctx.JSON(iris.Map{"ok": true, "completed": len(completed)})
}
