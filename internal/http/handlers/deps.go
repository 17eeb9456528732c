package handlers

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"catalogconsole/internal/config"
	"catalogconsole/internal/services"
)

// Pinger is implemented by session repos that sit on an external store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config   config.Config
	Auth     *services.AuthService
	Catalog  *services.Catalog
	Gatherer prometheus.Gatherer
	// Health is optional; nil reports healthy.
	Health Pinger

	AuthHandler        *AuthHandler
	AdminHandler       *AdminHandler
	CategoryHandler    *CategoryHandler
	SubCategoryHandler *SubCategoryHandler
	ProductHandler     *ProductHandler
}

func NewDeps(cfg config.Config, auth *services.AuthService, catalog *services.Catalog, gatherer prometheus.Gatherer) *Deps {
	b := base{Auth: auth, Catalog: catalog}
	return &Deps{
		Config:   cfg,
		Auth:     auth,
		Catalog:  catalog,
		Gatherer: gatherer,

		AuthHandler:        &AuthHandler{Auth: auth, SecureCookie: cfg.Session.CookieSecure},
		AdminHandler:       &AdminHandler{base: b},
		CategoryHandler:    &CategoryHandler{base: b},
		SubCategoryHandler: &SubCategoryHandler{base: b},
		ProductHandler:     &ProductHandler{base: b},
	}
}
