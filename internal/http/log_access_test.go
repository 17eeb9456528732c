package handlers_test

import (
	"testing"

	"catalogconsole/internal/config"
	"catalogconsole/internal/domain"
)

func TestAccessDeniedLogs(t *testing.T) {
	c := newConsole(t, nil)
	b := c.browser(t)
	b.login(userEmail)

	entries := captureLogs(t, func() { b.get("/admin-dashboard") })
	e, ok := findLog(entries, "access.denied.admin")
	if !ok {
		t.Fatal("expected access.denied.admin log")
	}
	if e.Fields["role"] != domain.RoleUser {
		t.Fatalf("expected role field %q, got %v", domain.RoleUser, e.Fields["role"])
	}
	if e.Level != "warn" {
		t.Fatalf("expected warn level, got %q", e.Level)
	}
}

func TestPermissionDeniedLogs(t *testing.T) {
	c := newConsole(t, func(cfg *config.Config) {
		cfg.Auth.AllowedRoles = []string{domain.RoleAdmin, domain.RoleUser}
	})
	b := c.browser(t)
	b.login(userEmail)

	entries := captureLogs(t, func() { b.get("/admin-dashboard/products/new") })
	e, ok := findLog(entries, "access.denied.role")
	if !ok {
		t.Fatal("expected access.denied.role log")
	}
	if e.Fields["permission"] != "product:create" {
		t.Fatalf("expected product:create, got %v", e.Fields["permission"])
	}
}

func TestAdminMutationsAreAudited(t *testing.T) {
	c := newConsole(t, nil)
	b := c.browser(t)
	b.login(adminEmail)
	b.get("/admin-dashboard/categories")

	entries := captureLogs(t, func() { b.post("/admin-dashboard/categories/c2/delete", nil) })
	e, ok := findLog(entries, "admin.category.delete")
	if !ok {
		t.Fatal("expected admin.category.delete log")
	}
	if e.Level != "audit" || e.Fields["id"] != "c2" {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestUpstreamFailureIsLoggedOnce(t *testing.T) {
	c := newConsole(t, nil)
	b := c.browser(t)
	b.login(adminEmail)
	c.api.failWith("categories", 500)

	entries := captureLogs(t, func() { b.get("/admin-dashboard/categories") })
	n := 0
	for _, e := range entries {
		if e.Action == "store.category.fetch.fail" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected one store failure log, got %d", n)
	}
}
