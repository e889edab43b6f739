package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func newRequestIDApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	app := newRequestIDApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	id := resp.Header.Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-ID %q is not a uuid: %v", id, err)
	}
}

func TestRequestIDEchoesValidClientID(t *testing.T) {
	app := newRequestIDApp()
	provided := uuid.New().String()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", provided)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != provided {
		t.Errorf("X-Request-ID = %q, want echoed %q", got, provided)
	}
}

func TestRequestIDReplacesMalformedClientID(t *testing.T) {
	app := newRequestIDApp()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	got := resp.Header.Get("X-Request-ID")
	if got == "not-a-uuid" {
		t.Error("malformed client id was echoed back")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("replacement id %q is not a uuid: %v", got, err)
	}
}
