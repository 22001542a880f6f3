package main

import (
	"log"
	"net/http"

	"booktime-be/internal/address"
	"booktime-be/internal/basket"
	"booktime-be/internal/catalog"
	"booktime-be/internal/config"
	"booktime-be/internal/db"
	"booktime-be/internal/httpapi"
	"booktime-be/internal/logger"
	"booktime-be/internal/notification"
	"booktime-be/internal/order"
	"booktime-be/internal/session"
	"booktime-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	sender := notification.NewSMTPSender(cfg)
	notifier := notification.NewDispatcher(sender, cfg)

	sessions := session.NewStore(database)

	catalogRepo := catalog.NewRepository(database)
	catalogSvc := catalog.NewService(catalogRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, notifier)

	addressRepo := address.NewRepository(database)
	addressSvc := address.NewService(addressRepo)

	basketRepo := basket.NewRepository(database)
	basketSvc := basket.NewService(basketRepo, sessions, catalogSvc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, basketSvc, addressRepo, sessions, notifier)

	h := httpapi.NewHandler(userSvc, catalogSvc, basketSvc, orderSvc, addressSvc, notifier)
	router := httpapi.NewRouter(h)

	log.Printf("server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
