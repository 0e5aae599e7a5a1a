package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/engagement-updater/pkg/application"
	"github.com/iota-uz/engagement-updater/pkg/httpapi"
)

type IndexController struct{}

func NewIndexController() application.Controller {
	return &IndexController{}
}

func (c *IndexController) Key() string {
	return "/"
}

func (c *IndexController) Register(r *mux.Router) {
	r.HandleFunc("/", c.index).Methods(http.MethodGet)
}

func (c *IndexController) index(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"name": "engagement-updater"})
}
