package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestValidationBadInputs(t *testing.T) {
	c := newConsole(t, nil)
	b := c.browser(t)
	b.login(adminEmail)

	resp := b.get("/admin-dashboard/categories?q=%3Cscript%3E")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad search expected 400, got %d", resp.StatusCode)
	}
	if body := bodyOf(t, resp); !strings.Contains(body, "Enter a valid search term") {
		t.Fatalf("search notice missing; body=%s", body)
	}

	resp = b.get("/admin-dashboard/subcategories?category=%27%3B--")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad filter expected 400, got %d", resp.StatusCode)
	}

	resp = b.get("/admin-dashboard/products/p%24q")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("bad id expected 404, got %d", resp.StatusCode)
	}

	resp = b.get("/admin-dashboard/products/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown id expected 404, got %d", resp.StatusCode)
	}
}

func TestFormValidationKeepsDraft(t *testing.T) {
	c := newConsole(t, nil)
	b := c.browser(t)
	b.login(adminEmail)

	resp := b.post("/admin-dashboard/categories", url.Values{"title": {"  "}, "image": {"/img/tires.png"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := bodyOf(t, resp)
	if !strings.Contains(body, "Title is required") {
		t.Fatalf("field message missing; body=%s", body)
	}
	if !strings.Contains(body, `value="/img/tires.png"`) {
		t.Fatalf("draft not kept; body=%s", body)
	}
	if got := len(c.api.data["categories"]); got != 2 {
		t.Fatalf("invalid draft reached the API; %d categories", got)
	}
}

func TestTemplateAutoEscape(t *testing.T) {
	c := newConsole(t, nil)
	c.api.seed("categories", []map[string]any{{"_id": "x1", "title": "<script>alert(1)</script>"}})
	b := c.browser(t)
	b.login(adminEmail)

	body := bodyOf(t, b.get("/admin-dashboard/categories"))
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Fatal("found unescaped script tag in output")
	}
	if !strings.Contains(body, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("escaped script not found; output=%s", body)
	}
}
