package routes

import (
	"encoding/json"

	"airbnb-clone-server/models"
	"airbnb-clone-server/storage"
	"airbnb-clone-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

var supportedCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD"}

var cancellationPolicies = []string{"flexible", "moderate", "strict", "super_strict"}

type PropertyInput struct {
	Title              string   `json:"title" validate:"required,max=256"`
	Description        string   `json:"description"`
	PropertyType       string   `json:"propertyType" validate:"required,oneof=entire_place private_room shared_room"`
	AddressLine1       string   `json:"addressLine1" validate:"required"`
	AddressLine2       string   `json:"addressLine2"`
	City               string   `json:"city" validate:"required"`
	State              string   `json:"state"`
	Zip                string   `json:"zip"`
	Country            string   `json:"country" validate:"required"`
	Lat                float32  `json:"lat"`
	Lng                float32  `json:"lng"`
	Capacity           int      `json:"capacity" validate:"required,gte=1,lte=16"`
	Bedrooms           int      `json:"bedrooms" validate:"gte=0"`
	Beds               int      `json:"beds" validate:"gte=0"`
	Bathrooms          float32  `json:"bathrooms" validate:"gte=0"`
	NightlyPrice       float64  `json:"nightlyPrice" validate:"required,gt=0"`
	CleaningFee        float64  `json:"cleaningFee" validate:"gte=0"`
	ServiceFee         float64  `json:"serviceFee" validate:"gte=0"`
	Taxes              float64  `json:"taxes" validate:"gte=0"`
	Currency           string   `json:"currency"`
	MinStay            int      `json:"minStay" validate:"gte=1"`
	MaxStay            int      `json:"maxStay" validate:"gte=0"`
	InstantBookable    bool     `json:"instantBookable"`
	CancellationPolicy string   `json:"cancellationPolicy"`
	Amenities          []string `json:"amenities"`
	HouseRules         string   `json:"houseRules"`
	Images             []string `json:"images"`
}

func CreateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input PropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Currency == "" {
		input.Currency = "USD"
	}
	if !slices.Contains(supportedCurrencies, input.Currency) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unsupported currency", ctx)
		return
	}
	if input.CancellationPolicy == "" {
		input.CancellationPolicy = "moderate"
	}
	if !slices.Contains(cancellationPolicies, input.CancellationPolicy) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown cancellation policy", ctx)
		return
	}
	if input.MaxStay > 0 && input.MaxStay < input.MinStay {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "maxStay must be at least minStay", ctx)
		return
	}

	amenities, _ := json.Marshal(input.Amenities)
	images, _ := json.Marshal(input.Images)

	property := models.Property{
		HostID:             claims.ID,
		Title:              input.Title,
		Description:        input.Description,
		PropertyType:       input.PropertyType,
		AddressLine1:       input.AddressLine1,
		AddressLine2:       input.AddressLine2,
		City:               input.City,
		State:              input.State,
		Zip:                input.Zip,
		Country:            input.Country,
		Lat:                input.Lat,
		Lng:                input.Lng,
		Capacity:           input.Capacity,
		Bedrooms:           input.Bedrooms,
		Beds:               input.Beds,
		Bathrooms:          input.Bathrooms,
		NightlyPrice:       input.NightlyPrice,
		CleaningFee:        input.CleaningFee,
		ServiceFee:         input.ServiceFee,
		Taxes:              input.Taxes,
		Currency:           input.Currency,
		MinStay:            input.MinStay,
		MaxStay:            input.MaxStay,
		InstantBookable:    input.InstantBookable,
		CancellationPolicy: input.CancellationPolicy,
		Amenities:          datatypes.JSON(amenities),
		HouseRules:         input.HouseRules,
		Images:             datatypes.JSON(images),
		Status:             "active",
	}

	if res := storage.DB.Create(&property); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(property)
}

func GetProperty(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var property models.Property
	if res := storage.DB.Preload("Host").Preload("Reviews").First(&property, id); res.Error != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Property not found", ctx)
		return
	}

	ctx.JSON(property)
}

func GetPropertiesByUserID(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var properties []models.Property
	if res := storage.DB.Where("host_id = ?", id).Order("created_at DESC").Find(&properties); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(properties)
}

// UpdateProperty edits a listing the caller hosts. Price and rule changes
// never touch existing bookings; their price breakdown is snapshotted.
func UpdateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.Where("id = ? AND host_id = ?", id, claims.ID).First(&property).Error; err != nil {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Property not found or access denied", ctx)
		return
	}

	var input PropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Currency != "" && !slices.Contains(supportedCurrencies, input.Currency) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unsupported currency", ctx)
		return
	}
	if input.CancellationPolicy != "" && !slices.Contains(cancellationPolicies, input.CancellationPolicy) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown cancellation policy", ctx)
		return
	}

	amenities, _ := json.Marshal(input.Amenities)
	images, _ := json.Marshal(input.Images)

	property.Title = input.Title
	property.Description = input.Description
	property.PropertyType = input.PropertyType
	property.AddressLine1 = input.AddressLine1
	property.AddressLine2 = input.AddressLine2
	property.City = input.City
	property.State = input.State
	property.Zip = input.Zip
	property.Country = input.Country
	property.Lat = input.Lat
	property.Lng = input.Lng
	property.Capacity = input.Capacity
	property.Bedrooms = input.Bedrooms
	property.Beds = input.Beds
	property.Bathrooms = input.Bathrooms
	property.NightlyPrice = input.NightlyPrice
	property.CleaningFee = input.CleaningFee
	property.ServiceFee = input.ServiceFee
	property.Taxes = input.Taxes
	if input.Currency != "" {
		property.Currency = input.Currency
	}
	property.MinStay = input.MinStay
	property.MaxStay = input.MaxStay
	property.InstantBookable = input.InstantBookable
	if input.CancellationPolicy != "" {
		property.CancellationPolicy = input.CancellationPolicy
	}
	property.Amenities = datatypes.JSON(amenities)
	property.HouseRules = input.HouseRules
	property.Images = datatypes.JSON(images)

	if res := storage.DB.Save(&property); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(property)
}

type PropertyStatusInput struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// SetPropertyStatus lets the host pause or resume a listing. Inactive
// properties reject new bookings but keep existing ones.
func SetPropertyStatus(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var input PropertyStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	if err := storage.DB.Where("id = ? AND host_id = ?", id, claims.ID).First(&property).Error; err != nil {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Property not found or access denied", ctx)
		return
	}

	property.Status = input.Status
	if res := storage.DB.Save(&property); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(property)
}

func DeleteProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.Where("id = ? AND host_id = ?", id, claims.ID).First(&property).Error; err != nil {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Property not found or access denied", ctx)
		return
	}

	if res := storage.DB.Delete(&property); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Property deleted successfully"})
}

// ListProperties is the public catalog feed: active listings, newest first.
func ListProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if perPage <= 0 || perPage > 50 {
		perPage = 20
	}

	q := storage.DB.Model(&models.Property{}).Where("status = ?", "active")
	if city := ctx.URLParamDefault("city", ""); city != "" {
		q = q.Where("lower(city) = lower(?)", city)
	}

	var total int64
	q.Count(&total)

	var properties []models.Property
	if res := q.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&properties); res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, properties, page, perPage, total)
}
