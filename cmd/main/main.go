package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"electromart/internal/app"
	"electromart/internal/cart"
	"electromart/internal/checkout"
	elasticService "electromart/internal/elastic_search"
	"electromart/internal/etl"
	handlersCart "electromart/internal/handlers/cart"
	handlersCheckout "electromart/internal/handlers/checkout"
	handlersProduct "electromart/internal/handlers/product"
	handlersUser "electromart/internal/handlers/user"
	"electromart/internal/kafka"
	"electromart/internal/middleware"
	"electromart/internal/product"
	"electromart/internal/session"
	"electromart/internal/user"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

const cfgPath = "config/config.yaml"

func main() {
	// init logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	logger := zapLogger.Sugar()
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			logger.Warnf("error to sync logger: %v", err)
		}
	}()

	// парсим конфиг
	c, err := app.NewConfig(cfgPath)
	if err != nil {
		logger.Fatalf("error to parsing config: %v", err)
	}

	// init db
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s "+"password=%s dbname=%s sslmode=disable",
		c.CfgDB.Host, c.CfgDB.Port, c.CfgDB.Login, c.CfgDB.Password, c.CfgDB.Database,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatalf("error to database start: %v", err)
	}

	db.SetMaxOpenConns(c.MaxOpenConns)
	if err := db.Ping(); err != nil {
		logger.Infof("Failed to get response to ping: %v", err)
	}

	// init redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: "",
		DB:       0, // стандартная БД
	})

	// init elasticsearch
	esClient, err := elasticsearch.NewDefaultClient()
	if err != nil {
		logger.Fatalf("error to elasticsearch client init: %v", err)
	}
	esService := elasticService.NewService(esClient, logger, c.CfgES.Index)
	if err := esService.EnsureIndex(context.Background()); err != nil {
		logger.Warnf("failed to ensure search index: %v", err)
	}

	// init kafka producer
	eventProducer := kafka.NewProducer(c.KafkaBrokers, c.KafkaTopic, logger)
	defer eventProducer.Close()

	// init repository
	userRepository := user.NewUserDBRepository(db, logger, c.AdminUserID)
	sessionRepository := session.NewSessionRepository(redisClient, logger, c.Secret, c.SessionDuration)
	productRepository := product.NewProductDBRepository(db, logger)

	// init cart service поверх redis-хранилища снапшотов
	cartStore := cart.NewRedisStore(redisClient, logger)
	cartService := cart.NewService(cartStore, logger)

	// init checkout settlement
	settlement := checkout.NewSettlement(cartService, productRepository, eventProducer, logger)

	// фоновая индексация каталога в полнотекстовый поиск
	pipeline := etl.NewPipeline(
		etl.NewPostgresExtractor(db, logger),
		etl.NewTransformer(logger),
		etl.NewElasticLoader(esService, logger, db),
		logger,
		c.ETLInterval,
	)
	go pipeline.Run(context.Background())

	// init router
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// init handlers
	userHandlers := handlersUser.NewUserHandler(logger, userRepository, sessionRepository)
	productHandlers := handlersProduct.NewProductHandler(logger, productRepository, esService, eventProducer)
	cartHandlers := handlersCart.NewCartHandler(logger, cartService, productRepository, eventProducer)
	checkoutHandlers := handlersCheckout.NewCheckoutHandler(logger, settlement)

	// Ручки требующие авторизации
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.Auth(sessionRepository, logger))

	authRouter.HandleFunc("/cart", cartHandlers.GetCart).Methods("GET")
	authRouter.HandleFunc("/cart", cartHandlers.ClearCart).Methods("DELETE")
	authRouter.HandleFunc("/cart/count", cartHandlers.Count).Methods("GET")
	authRouter.HandleFunc("/cart/items", cartHandlers.AddToCart).Methods("POST")
	authRouter.HandleFunc("/cart/items/{id}", cartHandlers.UpdateQuantity).Methods("PUT")
	authRouter.HandleFunc("/cart/items/{id}", cartHandlers.RemoveFromCart).Methods("DELETE")

	authRouter.HandleFunc("/checkout", checkoutHandlers.Submit).Methods("POST")

	authRouter.HandleFunc("/products/{id}/buy", productHandlers.Buy).Methods("POST")

	// Ручки требующие роль администратора
	adminRouter := r.PathPrefix("/api/admin").Subrouter()
	adminRouter.Use(middleware.Auth(sessionRepository, logger))
	adminRouter.Use(middleware.Admin(logger))

	adminRouter.HandleFunc("/products", productHandlers.Create).Methods("POST")
	adminRouter.HandleFunc("/products/{id}", productHandlers.Delete).Methods("DELETE")
	adminRouter.HandleFunc("/products/{id}/quantity", productHandlers.UpdateQuantity).Methods("PUT")

	// Ручки НЕ требующие авторизации
	noAuthRouter := r.PathPrefix("/api").Subrouter()

	noAuthRouter.HandleFunc("/user/register", userHandlers.Register).Methods("POST")
	noAuthRouter.HandleFunc("/user/login", userHandlers.Login).Methods("POST")
	noAuthRouter.HandleFunc("/user/{id}", userHandlers.Info).Methods("GET")

	noAuthRouter.HandleFunc("/products", productHandlers.List).Methods("GET")
	noAuthRouter.HandleFunc("/products/{id}", productHandlers.GetByID).Methods("GET")

	logger.Infow("starting server",
		"type", "START",
		"addr", c.ServerPort,
	)

	srv := &http.Server{
		Addr:         c.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		panic("can't start server: " + err.Error())
	}
}
