package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"leafnote/internal/auth"
	"leafnote/internal/books"
	"leafnote/internal/enrich"
	"leafnote/internal/events"
	"leafnote/internal/localstore"
	"leafnote/internal/metadata"
	"leafnote/internal/recommend"
	synchub "leafnote/internal/sync"
	"leafnote/pkg/database"
	"leafnote/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start TCP sync first (so you notice binding errors early)
	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(syncAddr(), hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":        "not_ready",
				"db_error":      err.Error(),
				"tcp_listeners": stats.TCPListeners,
				"ws_listeners":  stats.WSListeners,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":        "ready",
			"db":            "ok",
			"tcp_listeners": stats.TCPListeners,
			"ws_listeners":  stats.WSListeners,
		})
	})

	// External book metadata and the pieces built on it
	booksAPI := metadata.NewClient(utils.LoadMetadataConfig())
	enricher := enrich.NewEnricher(booksAPI)
	recEngine := recommend.NewEngine(booksAPI)

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	if store, err := localstore.Open(localstore.DefaultPath()); err != nil {
		log.Printf("[main] local store unavailable, magic-link throttle off: %v", err)
	} else {
		defer store.Close()
		authHandler.MagicMarker = store
	}
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Analytics ingest; anonymous sessions allowed
	eventsRepo := events.NewRepo(db)
	eventsHandler := events.NewHandler(eventsRepo)
	eventsGroup := router.Group("/")
	eventsGroup.Use(auth.OptionalAuthMiddleware(tokenSvc, authRepo))
	eventsHandler.RegisterRoutes(eventsGroup)

	// Shelves (protected)
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	booksRepo := books.NewRepo(db)
	booksHandler := books.NewHandler(booksRepo, enricher, recEngine, hub)
	booksHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    httpAddr(),
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}

func httpAddr() string {
	if addr := os.Getenv("LEAFNOTE_HTTP_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

func syncAddr() string {
	if addr := os.Getenv("LEAFNOTE_SYNC_ADDR"); addr != "" {
		return addr
	}
	return ":7070"
}
