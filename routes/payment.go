package routes

import (
	"airbnb-clone-server/utils"

	"github.com/kataras/iris/v12"
)

// Payment boundary. The payment subsystem charges the card elsewhere and
// reports the outcome here; this server only records the transition.

type MarkPaidInput struct {
	PaymentReference string `json:"paymentReference" validate:"required,max=64"`
}

func MarkBookingPaid(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid booking ID", ctx)
		return
	}

	var input MarkPaidInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	b, err := Bookings.MarkPaid(ctx.Request().Context(), id, input.PaymentReference)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	ctx.JSON(b)
}

func MarkBookingPaymentFailed(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid booking ID", ctx)
		return
	}

	b, err := Bookings.MarkPaymentFailed(ctx.Request().Context(), id)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	ctx.JSON(b)
}
