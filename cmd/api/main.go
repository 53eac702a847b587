package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/auth"
	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/ariefcatur/go-shop-orders/internal/config"
	"github.com/ariefcatur/go-shop-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prod.Start(ctx)

	// Services
	store := &orders.PgStore{DB: db}
	orderSvc := &orders.Service{
		Store:        store,
		Reader:       store,
		IsTransient:  postgres.IsTransient,
		MaxAttempts:  cfg.OrderMaxAttempts,
		RetryBackoff: cfg.OrderRetryBackoff,
		TxTimeout:    cfg.OrderTxTimeout,
	}
	tokens := &auth.Tokens{Secret: []byte(cfg.JWTSecret)}
	authSvc := &auth.Service{DB: db, Tokens: tokens}
	catalogRepo := &catalog.Repo{DB: db}

	// Router
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Svc: authSvc}).Register(router)
	(&httpx.ProductsHandler{Repo: catalogRepo}).RegisterPublic(router)
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireAuth(tokens.Verify))
		(&httpx.OrdersHandler{
			Svc:      orderSvc,
			Producer: prod,
			Cache:    &redisx.StatusCache{R: rdb},
			Service:  cfg.ServiceName,
		}).Register(r)
		(&httpx.ProductsHandler{Repo: catalogRepo}).RegisterAdmin(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
