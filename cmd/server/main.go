package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/alphaboutique/storefront/internal/config"
	"github.com/alphaboutique/storefront/internal/es"
	"github.com/alphaboutique/storefront/internal/events"
	"github.com/alphaboutique/storefront/internal/handlers"
	"github.com/alphaboutique/storefront/internal/logging"
	authmw "github.com/alphaboutique/storefront/internal/middleware/auth"
	"github.com/alphaboutique/storefront/internal/mpesa"
	"github.com/alphaboutique/storefront/internal/supabase"
	httpserver "github.com/alphaboutique/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)
	logger.Info("backend starting", "supabase_url", configuration.SupabaseURL)

	db, err := supabase.New(supabase.Config{
		URL:    configuration.SupabaseURL,
		APIKey: configuration.SupabaseKey,
	})
	if err != nil {
		log.Fatal(err)
	}

	payments := mpesa.New(mpesa.Config{
		ConsumerKey:    configuration.MpesaConsumerKey,
		ConsumerSecret: configuration.MpesaConsumerSecret,
		Shortcode:      configuration.MpesaShortcode,
		Passkey:        configuration.MpesaPasskey,
		CallbackURL:    configuration.MpesaCallbackURL,
		Environment:    configuration.MpesaEnv,
	})

	var producer *events.Producer
	if configuration.KafkaAddress != "" {
		producer = events.NewProducer(configuration.KafkaAddress)
		defer producer.Close()
	}

	productHandler := &handlers.ProductHandler{DB: db, Events: producer, Log: logger}
	if configuration.ESURL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		productHandler.ES = esClient
		productHandler.ESIndex = "products"
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())

	deps := httpserver.Deps{
		AuthHandler:      &handlers.AuthHandler{DB: db, AdminCode: configuration.AdminSecretCode, Log: logger},
		PaymentHandler:   &handlers.PaymentHandler{DB: db, Mpesa: payments, Events: producer, Log: logger},
		ProductHandler:   productHandler,
		AdminHandler:     &handlers.AdminHandler{DB: db, Log: logger},
		CommunityHandler: &handlers.CommunityHandler{DB: db, Events: producer, Log: logger},
		Guard:            &authmw.Guard{JWTSecret: []byte(configuration.SupabaseJWTSecret), DB: db, Log: logger},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
