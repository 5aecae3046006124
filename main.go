package main

import (
	"fmt"
	"log"
	"os"

	"airbnb-clone-server/booking"
	"airbnb-clone-server/routes"
	"airbnb-clone-server/storage"
	"airbnb-clone-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	db := storage.InitializeDB()
	storage.InitializeRedis()

	store := booking.NewGormStore(db)
	routes.Bookings = booking.NewService(store, store)

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/{id}", accessTokenVerifierMiddleware, routes.GetUser)
	}

	property := app.Party("/api/property")
	{
		property.Get("/", routes.ListProperties)
		property.Post("/", accessTokenVerifierMiddleware, routes.CreateProperty)
		property.Get("/{id}", routes.GetProperty)
		property.Get("/userid/{id}", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetPropertiesByUserID)
		property.Patch("/update/{id}", accessTokenVerifierMiddleware, routes.UpdateProperty)
		property.Patch("/{id}/status", accessTokenVerifierMiddleware, routes.SetPropertyStatus)
		property.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteProperty)
	}

	bookings := app.Party("/api/bookings")
	{
		bookings.Post("/", accessTokenVerifierMiddleware, routes.CreateBooking)
		bookings.Get("/", accessTokenVerifierMiddleware, routes.GetBookings)
		bookings.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetBookingByID)
		bookings.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, routes.UpdateBookingStatus)
		bookings.Put("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateBooking)
		bookings.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteBooking)
		bookings.Post("/complete-elapsed", utils.InternalAuthMiddleware, routes.CompleteElapsedBookings)
	}

	payments := app.Party("/api/payments", utils.InternalAuthMiddleware)
	{
		payments.Post("/bookings/{id:uint}/paid", routes.MarkBookingPaid)
		payments.Post("/bookings/{id:uint}/failed", routes.MarkBookingPaymentFailed)
	}

	reviews := app.Party("/api/reviews")
	{
		reviews.Get("/property/{propertyId:uint}", routes.ListPropertyReviews)
		reviews.Post("/property/{propertyId:uint}", accessTokenVerifierMiddleware, routes.CreatePropertyReview)
	}

	notifications := app.Party("/api/notifications")
	{
		notifications.Get("/", accessTokenVerifierMiddleware, routes.GetUserNotifications)
		notifications.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, routes.MarkNotificationRead)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
