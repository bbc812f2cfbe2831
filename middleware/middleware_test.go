package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"habitxp/logger"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
)

func TestMemoryLimiterBlocksAfterBurst(t *testing.T) {
	l := NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should pass: %v %v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Fatalf("fourth request should be limited")
	}
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("other keys have their own bucket")
	}
}

func TestMemoryLimiterCleanup(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	_, _ = l.Allow(context.Background(), "a")
	if n := l.Cleanup(time.Hour); n != 0 {
		t.Fatalf("fresh bucket removed")
	}
	if n := l.Cleanup(-time.Second); n != 1 {
		t.Fatalf("expected idle bucket removal, got %d", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(NewMemoryLimiter(1, time.Hour), logger.Nop(), "devagar"))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("first request: %v %v", resp, err)
	}
	resp, err = app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil || resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("second request should be limited: %v %v", resp.StatusCode, err)
	}
	resp, err = app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("health is never limited: %v %v", resp.StatusCode, err)
	}
}

func TestAuthMiddleware(t *testing.T) {
	utils.ConfigureJWT("middleware-test-secret-0123456789abcdef", time.Hour)

	app := fiber.New()
	app.Get("/me", AuthMiddleware, func(c *fiber.Ctx) error {
		id, err := GetUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tok, err := utils.GenerateToken(9)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + tok, fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", fiber.StatusUnauthorized},
		{"valid", "Bearer " + tok, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(), AccessLog(logger.Nop()))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Fatalf("missing request id header")
	}
}
