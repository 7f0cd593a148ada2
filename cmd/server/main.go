package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-pg/pg/v10"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventala/eventala/internal/actors/httpapi"
	mongoactor "github.com/eventala/eventala/internal/actors/mongo"
	postgresactor "github.com/eventala/eventala/internal/actors/postgres"
	"github.com/eventala/eventala/internal/config"
	"github.com/eventala/eventala/internal/core/usecase"
)

func init() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	// Only log the DebugLevel severity or above.
	log.SetLevel(log.DebugLevel)
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("could not load configuration")
		return err
	}

	clientOptions := options.Client().ApplyURI(cfg.MongoURL)
	db, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.WithError(err).Error("could not connect to mongo")
		return err
	}
	if err := db.Ping(ctx, nil); err != nil {
		log.WithError(err).Error("db does not appear to be reachable")
		return err
	}
	defer db.Disconnect(ctx)
	database := db.Database(cfg.MongoDatabase)

	mongoActor, err := mongoactor.NewMongoDB(mongoactor.MongoDBArgs{
		Profiles: database.Collection("profiles"),
		Events:   database.Collection("events"),
		Stocks:   database.Collection("stocks"),
	})
	if err != nil {
		log.WithError(err).Error("could not initialize mongo actor")
		return err
	}

	pgOpts, err := pg.ParseURL(cfg.PostgresURL)
	if err != nil {
		log.WithError(err).Error("could not parse postgres url")
		return err
	}
	pgDB := pg.Connect(pgOpts)
	defer pgDB.Close()
	if err := pgDB.Ping(ctx); err != nil {
		log.WithError(err).Error("postgres does not appear to be reachable")
		return err
	}

	postgresActor, err := postgresactor.NewPostgresDB(postgresactor.PostgresDBArgs{DB: pgDB})
	if err != nil {
		log.WithError(err).Error("could not initialize postgres actor")
		return err
	}

	migrator := usecase.NewRoleMigrator(usecase.RoleMigratorArgs{
		Profiles:   mongoActor,
		Identities: postgresActor,
		Journal:    postgresActor,
	})
	profileSvc := usecase.NewProfileService(usecase.ProfileServiceArgs{
		Profiles:   mongoActor,
		Identities: postgresActor,
		Migrator:   migrator,
		Outbox:     postgresActor,
	})
	eventSvc := usecase.NewEventService(usecase.EventServiceArgs{Events: mongoActor})
	stockSvc := usecase.NewStockService(usecase.StockServiceArgs{Stocks: mongoActor})
	authSvc := usecase.NewAuthService(usecase.AuthServiceArgs{
		Identities: postgresActor,
		SigningKey: []byte(cfg.TokenSigningKey),
		TokenTTL:   cfg.TokenTTL,
	})
	verifier := usecase.NewVerifier(usecase.VerifierArgs{SigningKey: []byte(cfg.TokenSigningKey)})

	apiServer := httpapi.NewServer(httpapi.ServerArgs{
		Verifier: verifier,
		Auth:     authSvc,
		Profiles: profileSvc,
		Events:   eventSvc,
		Stocks:   stockSvc,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiServer.Router(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	log.
		WithField("http-server-addr", cfg.HTTPAddr).
		Info("server up or soon to be up. listening to SIGTERM, SIGINT, SIGQUIT for stoping the server")

	// Wait for signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-ch

	// Stop server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}
