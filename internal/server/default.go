package server

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/engagement-updater/pkg/application"
	"github.com/iota-uz/engagement-updater/pkg/configuration"
	"github.com/iota-uz/engagement-updater/pkg/httpapi"
	"github.com/iota-uz/engagement-updater/pkg/middleware"
	"github.com/iota-uz/engagement-updater/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	app.RegisterMiddleware(
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
	)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such route", nil)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	return server.NewHTTPServer(app, notFound, methodNotAllowed), nil
}
