package echoServer

import (
	"sharekori/app/echoServer/controller/auth"
	"sharekori/app/echoServer/controller/item"
	"sharekori/app/echoServer/controller/rating"
	"sharekori/app/echoServer/controller/rental"

	"github.com/labstack/echo/v4"
)

type C struct {
	Auth   *auth.Controller
	Item   *item.Controller
	Rental *rental.Controller
	Rating *rating.Controller

	JWTSecret string
	Users     UserSource
}

func Register(e *echo.Echo, c C) {
	guard := AuthRequired(c.JWTSecret, c.Users)

	// Public
	pub := e.Group("/api")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	pub.GET("/items/featured", c.Item.Featured)
	pub.GET("/items/search", c.Item.Search)
	pub.GET("/items/:id", c.Item.Detail)
	pub.GET("/items/:id/image", c.Item.Image)

	pub.GET("/rentals/availability/:itemId", c.Rental.Availability)
	pub.GET("/rentals/check", c.Rental.Check)

	pub.GET("/ratings/user/:userId/average", c.Rating.OwnerAverage)
	pub.GET("/reviews/item/:itemId", c.Rating.ByItem)

	// Auth
	priv := e.Group("/api", guard...)
	priv.GET("/users/me", c.Auth.Me)

	priv.POST("/items", c.Item.Create)
	priv.GET("/items/user", c.Item.Mine)
	priv.DELETE("/items/:id", c.Item.Delete)

	priv.POST("/rentals", c.Rental.Create)
	priv.GET("/rentals/my-rentals", c.Rental.MyRentals)
	priv.GET("/rentals/my-requests", c.Rental.MyRequests)
	priv.GET("/rentals/item-requests", c.Rental.ItemRequests)
	priv.GET("/rentals/user/completed", c.Rental.CanRate)
	priv.PUT("/rentals/mark-delivered/:requestId", c.Rental.MarkDelivered)

	priv.POST("/ratings", c.Rating.Submit)
	priv.GET("/ratings/rental/:rentalId", c.Rating.ByRental)
}
