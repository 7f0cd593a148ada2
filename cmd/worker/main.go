package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub"
	"github.com/go-pg/pg/v10"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoactor "github.com/eventala/eventala/internal/actors/mongo"
	postgresactor "github.com/eventala/eventala/internal/actors/postgres"
	produceractor "github.com/eventala/eventala/internal/actors/pubsub/producer"
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

	client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
	if err != nil {
		return err
	}
	defer client.Close()

	topic := client.Topic(cfg.PubSubProfileEventTopic)
	producer, err := produceractor.NewProducer(topic)
	if err != nil {
		return err
	}

	informer := usecase.NewInformer(producer)
	relay := usecase.NewOutboxRelay(usecase.OutboxRelayArgs{
		Outbox:  postgresActor,
		Handler: informer,
	})

	migrator := usecase.NewRoleMigrator(usecase.RoleMigratorArgs{
		Profiles:   mongoActor,
		Identities: postgresActor,
		Journal:    postgresActor,
	})
	reconciler := usecase.NewMigrationReconciler(usecase.MigrationReconcilerArgs{
		Journal:  postgresActor,
		Migrator: migrator,
		Grace:    cfg.ReconcileGrace,
	})

	// start outbox relay
	go func(ctx context.Context) {
		if err := relay.Run(ctx, cfg.OutboxPollInterval); err != nil && ctx.Err() == nil {
			panic(err)
		}
	}(ctx)

	// start migration reconciler
	go func(ctx context.Context) {
		if err := reconciler.Run(ctx, cfg.ReconcileInterval); err != nil && ctx.Err() == nil {
			panic(err)
		}
	}(ctx)

	log.
		WithField("outbox-poll-interval", cfg.OutboxPollInterval.String()).
		WithField("reconcile-interval", cfg.ReconcileInterval.String()).
		Info("worker up. listening to SIGTERM, SIGINT, SIGQUIT for stoping the worker")

	// Wait for signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-ch

	return nil
}

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}
