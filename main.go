// Package main sharekori API.
//
// @title           sharekori API
// @version         1.0
// @description     Peer-to-peer rental marketplace (users, items, rentals, ratings).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"sharekori/app/echoServer"
	authctrl "sharekori/app/echoServer/controller/auth"
	itemctrl "sharekori/app/echoServer/controller/item"
	ratingctrl "sharekori/app/echoServer/controller/rating"
	rentalctrl "sharekori/app/echoServer/controller/rental"
	"sharekori/app/echoServer/validation"
	"sharekori/config"
	itemrepo "sharekori/repository/item"
	ratingrepo "sharekori/repository/rating"
	rentalrepo "sharekori/repository/rental"
	userrepo "sharekori/repository/user"
	authsvc "sharekori/service/auth"
	itemsvc "sharekori/service/item"
	ratingsvc "sharekori/service/rating"
	rentalsvc "sharekori/service/rental"
	"sharekori/util/database"
	"sharekori/util/imagestore"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// image files
	imgs, err := imagestore.New(cfg.UploadDir)
	if err != nil {
		log.Error("upload dir init failed", "dir", cfg.UploadDir, "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	ir := itemrepo.New(db)
	rr := rentalrepo.New(db)
	gr := ratingrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	is := itemsvc.New(ir, imgs, log)
	rs := rentalsvc.New(db, rr)
	gs := ratingsvc.New(gr)

	// orphaned upload files get swept in the background
	sweeper := itemsvc.NewSweeper(ir, imgs, log)
	go sweeper.Run(ctx, cfg.SweepInterval)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: is, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	ratingC := &ratingctrl.Controller{Svc: gs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		Item:   itemC,
		Rental: rentalC,
		Rating: ratingC,

		JWTSecret: cfg.JWTSecret,
		Users:     ur,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
