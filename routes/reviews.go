package routes

import (
	"airbnb-clone-server/booking"
	"airbnb-clone-server/models"
	"airbnb-clone-server/storage"
	"airbnb-clone-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreateReviewInput struct {
	BookingID *uint  `json:"bookingID"`
	Title     string `json:"title" validate:"max=256"`
	Body      string `json:"body" validate:"required"`
	Stars     int    `json:"stars" validate:"required,gte=1,lte=5"`
}

// CreatePropertyReview records a review; it is marked verified when it
// references one of the reviewer's completed stays on the property.
func CreatePropertyReview(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	propertyID, err := ctx.Params().GetUint("propertyId")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid property ID", ctx)
		return
	}

	var input CreateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	if res := storage.DB.First(&property, propertyID); res.Error != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found", ctx)
		return
	}

	review := models.Review{
		UserID:     claims.ID,
		PropertyID: propertyID,
		BookingID:  input.BookingID,
		Title:      input.Title,
		Body:       input.Body,
		Stars:      input.Stars,
	}

	if input.BookingID != nil {
		var b models.Booking
		if res := storage.DB.Where("id = ? AND guest_id = ? AND property_id = ? AND status = ?",
			*input.BookingID, claims.ID, propertyID, string(booking.StatusCompleted)).First(&b); res.Error == nil {
			review.IsVerified = true
		}
	}

	if res := storage.DB.Create(&review); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(review)
}

func ListPropertyReviews(ctx iris.Context) {
	propertyID, err := ctx.Params().GetUint("propertyId")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid property ID", ctx)
		return
	}

	var reviews []models.Review
	if res := storage.DB.Preload("User").Where("property_id = ?", propertyID).
		Order("created_at DESC").Find(&reviews); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(reviews)
}
