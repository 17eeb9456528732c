package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalogconsole/internal/guard"
	applog "catalogconsole/internal/log"
	"catalogconsole/internal/view"
)

// NewApp builds the console: middleware chain, public pages and the
// dashboard subtree.
func NewApp(d *Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		Views:                 view.NewEngine(cfg.App.TemplatesDir, cfg.App.IsDev()),
		ViewsLayout:           view.Layout,
		ErrorHandler:          ErrorHandler,
		BodyLimit:             cfg.Limits.MaxBodyBytes,
		DisableStartupMessage: !cfg.App.IsDev(),
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/static/") },
	}))
	app.Use(helmet.New())

	if cfg.App.StaticDir != "" {
		app.Static("/static", cfg.App.StaticDir)
	}
	app.Get("/healthz", d.healthz)
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	if cfg.Limits.RequestsPerMin > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Limits.RequestsPerMin,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests")
			},
		}))
	}
	app.Use(Sessions(d.Auth, cfg.Session.CookieSecure))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.Session.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			c.Status(fiber.StatusForbidden)
			return render(c, "notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Public pages ----------
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect(DashboardPrefix) })
	app.Get("/login", PublicOnly(guard.Roles(cfg.Auth.DashboardRoles...)), d.AuthHandler.LoginForm)
	app.Post("/login", d.loginLimiter(), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Get("/unauthorized", d.AuthHandler.Unauthorized)

	// ---------- Dashboard ----------
	admin := app.Group(DashboardPrefix, RequireRoles(guard.Roles(cfg.Auth.AllowedRoles...)))
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Get("/tire-keys", d.AdminHandler.TireKeys)

	cat := d.CategoryHandler
	admin.Get("/categories", RequirePermission(guard.CategoryView), cat.List)
	admin.Get("/categories/new", RequirePermission(guard.CategoryCreate), cat.New)
	admin.Post("/categories", RequirePermission(guard.CategoryCreate), cat.Create)
	admin.Get("/categories/:id", RequirePermission(guard.CategoryView), cat.View)
	admin.Get("/categories/:id/edit", RequirePermission(guard.CategoryUpdate), cat.Edit)
	admin.Post("/categories/:id", RequirePermission(guard.CategoryUpdate), cat.Update)
	admin.Post("/categories/:id/delete", RequirePermission(guard.CategoryDelete), cat.Delete)

	sub := d.SubCategoryHandler
	admin.Get("/subcategories", RequirePermission(guard.SubCategoryView), sub.List)
	admin.Get("/subcategories/new", RequirePermission(guard.SubCategoryCreate), sub.New)
	admin.Post("/subcategories", RequirePermission(guard.SubCategoryCreate), sub.Create)
	admin.Get("/subcategories/:id", RequirePermission(guard.SubCategoryView), sub.View)
	admin.Get("/subcategories/:id/edit", RequirePermission(guard.SubCategoryUpdate), sub.Edit)
	admin.Post("/subcategories/:id", RequirePermission(guard.SubCategoryUpdate), sub.Update)
	admin.Post("/subcategories/:id/delete", RequirePermission(guard.SubCategoryDelete), sub.Delete)

	prod := d.ProductHandler
	admin.Get("/products", RequirePermission(guard.ProductView), prod.List)
	admin.Get("/products/new", RequirePermission(guard.ProductCreate), prod.New)
	admin.Post("/products", RequirePermission(guard.ProductCreate), prod.Create)
	admin.Get("/products/:id", RequirePermission(guard.ProductView), prod.View)
	admin.Get("/products/:id/edit", RequirePermission(guard.ProductUpdate), prod.Edit)
	admin.Post("/products/:id", RequirePermission(guard.ProductUpdate), prod.Update)
	admin.Post("/products/:id/delete", RequirePermission(guard.ProductDelete), prod.Delete)

	// 404
	app.Use(NotFound)
	return app
}

func (d *Deps) loginLimiter() fiber.Handler {
	attempts := d.Config.Limits.LoginAttempts
	if attempts <= 0 {
		attempts = 5
	}
	window := d.Config.Limits.LoginWindow
	if window <= 0 {
		window = 10 * time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        attempts,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
}

func (d *Deps) healthz(c *fiber.Ctx) error {
	if d.Health != nil {
		if err := d.Health.Ping(c.UserContext()); err != nil {
			applog.Error(c, "health.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
	}
	return c.JSON(fiber.Map{"ok": true, "sessions": d.Auth.Sessions().Live()})
}
