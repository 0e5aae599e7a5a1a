package application

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/engagement-updater/pkg/eventbus"
)

// Controller is a self-registering group of HTTP routes.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

type Application interface {
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	EventPublisher() eventbus.EventBusWithError
	Logger() *logrus.Logger
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
}

type ApplicationOptions struct {
	EventBus eventbus.EventBusWithError
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		eventPublisher: opts.EventBus,
		logger:         opts.Logger,
		controllers:    make(map[string]Controller),
	}
}

type application struct {
	eventPublisher eventbus.EventBusWithError
	logger         *logrus.Logger
	controllers    map[string]Controller
	middleware     []mux.MiddlewareFunc
}

func (app *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(app.controllers))
	for _, c := range app.controllers {
		controllers = append(controllers, c)
	}
	return controllers
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

func (app *application) EventPublisher() eventbus.EventBusWithError {
	return app.eventPublisher
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}
