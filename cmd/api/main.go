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

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/Gokulm100/e4u-Backend/internal/advisory"
	"github.com/Gokulm100/e4u-Backend/internal/auth"
	"github.com/Gokulm100/e4u-Backend/internal/config"
	"github.com/Gokulm100/e4u-Backend/internal/data"
	"github.com/Gokulm100/e4u-Backend/internal/db"
	"github.com/Gokulm100/e4u-Backend/internal/inbox"
	"github.com/Gokulm100/e4u-Backend/internal/middleware"
	"github.com/Gokulm100/e4u-Backend/internal/notify"
	"github.com/Gokulm100/e4u-Backend/internal/upload"
)

// defaultCategories is the reference data seeded on every startup. Seeding
// is idempotent; operators add further categories directly in the database.
var defaultCategories = []string{
	"Electronics",
	"Vehicles",
	"Property",
	"Furniture",
	"Fashion",
	"Sports & Hobbies",
	"Books",
	"Services",
	"Pets",
	"Others",
}

func main() {
	cfg := config.Load()

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	defer func() {
		_ = dbClient.Close(ctx)
	}()

	if err := dbClient.CreateIndexes(ctx); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}

	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	categoriesStore := data.NewCategoriesStore(dbClient.CategoriesCollection())
	adsStore := data.NewAdsStore(dbClient.AdsCollection())
	chatsStore := data.NewChatsStore(dbClient.ChatsCollection())

	if err := categoriesStore.Seed(ctx, defaultCategories); err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	// Firebase backs both Google-identity login and push notifications.
	// Either half may be unavailable (no credentials, messaging disabled);
	// the server runs without them and the affected features degrade.
	var identity auth.IdentityVerifier
	var notifier inbox.Notifier
	if app := newFirebaseApp(ctx, cfg.GoogleCredentials); app != nil {
		if authClient, err := app.Auth(ctx); err != nil {
			log.Printf("firebase auth unavailable, identity login disabled: %v", err)
		} else {
			identity = auth.NewFirebaseVerifier(authClient)
		}
		if msgClient, err := app.Messaging(ctx); err != nil {
			log.Printf("firebase messaging unavailable, push disabled: %v", err)
		} else {
			notifier = notify.NewDispatcher(msgClient)
		}
	}

	var aiClient advisoryClient
	if cfg.GeminiAPIKey != "" {
		client, err := advisory.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("failed to create AI client: %v", err)
		}
		defer client.Close()
		aiClient = client
	} else {
		log.Println("GEMINI_API_KEY not set, AI features disabled")
	}

	uploads, err := upload.NewStore(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("failed to prepare upload dir: %v", err)
	}

	inboxSvc := inbox.NewService(adsStore, chatsStore, usersStore, notifier)

	limiterStore := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, 1*time.Minute)
	defer limiterStore.Stop()

	srv := newServer(usersStore, adsStore, categoriesStore, chatsStore, inboxSvc, aiClient, uploads, jwtMgr, identity)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.routes(limiterStore),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server exit: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// newFirebaseApp initializes the Firebase SDK, preferring an explicit
// service account file and falling back to application default credentials.
// A nil return means Firebase-backed features stay off.
func newFirebaseApp(ctx context.Context, credentialsFile string) *firebase.App {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		log.Printf("firebase init failed, identity login and push disabled: %v", err)
		return nil
	}
	return app
}
