package main

import (
	"context"
	"errors"
	"log"
	"os"
	"runtime/debug"

	internalserver "github.com/iota-uz/engagement-updater/internal/server"
	"github.com/iota-uz/engagement-updater/modules/engagement/domain/events"
	"github.com/iota-uz/engagement-updater/modules/engagement/infrastructure/mo"
	"github.com/iota-uz/engagement-updater/modules/engagement/presentation/controllers"
	"github.com/iota-uz/engagement-updater/modules/engagement/services"
	"github.com/iota-uz/engagement-updater/pkg/application"
	"github.com/iota-uz/engagement-updater/pkg/configuration"
	"github.com/iota-uz/engagement-updater/pkg/eventbus"
	"github.com/iota-uz/engagement-updater/pkg/metrics"
)

var errAMQPNotConnected = errors.New("amqp connection is not open")

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	services.SetBuildInformation(conf.CommitTag, conf.CommitSHA)

	ctx := context.Background()

	logger.Info("Setting up clients")
	authClient := mo.NewAuthClient(ctx, mo.AuthOptions{
		Server:       conf.Auth.Server,
		Realm:        conf.Auth.Realm,
		ClientID:     conf.Auth.ClientID,
		ClientSecret: conf.Auth.ClientSecret,
		Timeout:      conf.GraphQLTimeout,
	})
	gqlClient := mo.NewGraphQLClient(conf.MOURL, authClient)
	modelClient := mo.NewModelClient(conf.MOURL, authClient)

	updater, err := services.NewUpdaterService(ctx, services.UpdaterOptions{
		Reader:                 gqlClient,
		Writer:                 modelClient,
		AssociationTypeUserKey: conf.AssociationType,
		DryRun:                 conf.DryRun,
		Logger:                 logger,
	})
	if err != nil {
		log.Fatalf("failed to create updater service: %v", err)
	}

	bus := eventbus.NewEventPublisher(logger)
	bus.Subscribe(func(ctx context.Context, key events.RoutingKey, payload events.Payload) error {
		_, err := updater.HandleEvent(ctx, key, payload)
		return err
	})

	logger.Info("Setting up AMQP subscriber")
	subscriber, err := mo.NewSubscriber(mo.SubscriberOptions{
		URL:           conf.AMQP.URL,
		Exchange:      conf.AMQP.Exchange,
		QueuePrefix:   conf.AMQP.QueuePrefix,
		PrefetchCount: conf.AMQP.PrefetchCount,
		RequeueDelay:  conf.AMQP.RequeueDelay,
		Bus:           bus,
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create AMQP subscriber: %v", err)
	}
	go func() {
		if err := subscriber.Run(ctx); err != nil {
			logger.WithError(err).Error("amqp: subscriber stopped")
		}
	}()

	app := application.New(&application.ApplicationOptions{
		EventBus: bus,
		Logger:   logger,
	})
	app.RegisterControllers(
		controllers.NewIndexController(),
		controllers.NewTriggerController(updater, logger, conf.TriggerConcurrency),
		controllers.NewHealthController(logger,
			controllers.HealthCheck{Name: "AMQP", Check: func(ctx context.Context) error {
				if !subscriber.Healthy() {
					return errAMQPNotConnected
				}
				return nil
			}},
			controllers.HealthCheck{Name: "GraphQL", Check: gqlClient.Healthcheck},
			controllers.HealthCheck{Name: "Service API", Check: modelClient.Healthcheck},
		),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance, err := internalserver.Default(&internalserver.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
