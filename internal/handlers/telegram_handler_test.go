package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
	"sprout/internal/services"
)

// --- mock telegram service ---

type mockTelegramService struct {
	generateLinkCodeFn func(userID string) (string, time.Time, error)
	getLinkStatusFn    func(userID string) (*models.TelegramLink, error)
	unlinkFn           func(userID string) error
}

func (m *mockTelegramService) GenerateLinkCode(userID string) (string, time.Time, error) {
	if m.generateLinkCodeFn != nil {
		return m.generateLinkCodeFn(userID)
	}
	return "ABC123", time.Now().Add(15 * time.Minute), nil
}

func (m *mockTelegramService) CompleteLink(_ string, _, _ int64, _, _ string) (*models.TelegramLink, error) {
	return &models.TelegramLink{}, nil
}

func (m *mockTelegramService) GetLinkStatus(userID string) (*models.TelegramLink, error) {
	if m.getLinkStatusFn != nil {
		return m.getLinkStatusFn(userID)
	}
	return &models.TelegramLink{}, nil
}

func (m *mockTelegramService) Unlink(userID string) error {
	if m.unlinkFn != nil {
		return m.unlinkFn(userID)
	}
	return nil
}

func (m *mockTelegramService) ActiveLinksForHousehold(_ string) ([]models.TelegramLink, error) {
	return nil, nil
}

func (m *mockTelegramService) RecordMessage(_ int64) error { return nil }

var _ services.TelegramServicer = (*mockTelegramService)(nil)

func setupTelegramRouter(handler *TelegramHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/telegram/link", handler.GenerateCode)
	auth.GET("/telegram/link", handler.GetLink)
	auth.DELETE("/telegram/link", handler.Unlink)
	return r
}

func TestTelegramHandler_GenerateCode(t *testing.T) {
	t.Run("returns 200 with code and expiry", func(t *testing.T) {
		expiry := time.Now().Add(15 * time.Minute)
		svc := &mockTelegramService{
			generateLinkCodeFn: func(_ string) (string, time.Time, error) {
				return "XYZ789", expiry, nil
			},
		}
		handler := NewTelegramHandler(svc, &mockAuditService{})
		r := setupTelegramRouter(handler)

		rec := doRequest(r, "POST", "/telegram/link", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["link_code"] != "XYZ789" {
			t.Errorf("expected XYZ789, got %v", result["link_code"])
		}
		if result["expires_at"] == nil {
			t.Error("expected expires_at in response")
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewTelegramHandler(&mockTelegramService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/telegram/link", handler.GenerateCode)

		rec := doRequest(r, "POST", "/telegram/link", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestTelegramHandler_GetLink(t *testing.T) {
	t.Run("returns 200 with link", func(t *testing.T) {
		svc := &mockTelegramService{
			getLinkStatusFn: func(userID string) (*models.TelegramLink, error) {
				return &models.TelegramLink{
					Base:             models.Base{ID: testResourceID},
					UserID:           userID,
					TelegramUsername: "pat_example",
					IsActive:         true,
				}, nil
			},
		}
		handler := NewTelegramHandler(svc, &mockAuditService{})
		r := setupTelegramRouter(handler)

		rec := doRequest(r, "GET", "/telegram/link", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		link := result["link"].(map[string]interface{})
		if link["telegram_username"] != "pat_example" {
			t.Errorf("expected pat_example, got %v", link["telegram_username"])
		}
	})

	t.Run("returns 404 when no link", func(t *testing.T) {
		svc := &mockTelegramService{
			getLinkStatusFn: func(_ string) (*models.TelegramLink, error) {
				return nil, apperrors.ErrNotFound
			},
		}
		handler := NewTelegramHandler(svc, &mockAuditService{})
		r := setupTelegramRouter(handler)

		rec := doRequest(r, "GET", "/telegram/link", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTelegramHandler_Unlink(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var unlinked string
		svc := &mockTelegramService{
			unlinkFn: func(userID string) error {
				unlinked = userID
				return nil
			},
		}
		handler := NewTelegramHandler(svc, &mockAuditService{})
		r := setupTelegramRouter(handler)

		rec := doRequest(r, "DELETE", "/telegram/link", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if unlinked != testUserID {
			t.Errorf("expected unlink for %s, got %s", testUserID, unlinked)
		}
	})

	t.Run("returns 404 when no link", func(t *testing.T) {
		svc := &mockTelegramService{
			unlinkFn: func(_ string) error {
				return apperrors.ErrNotFound
			},
		}
		handler := NewTelegramHandler(svc, &mockAuditService{})
		r := setupTelegramRouter(handler)

		rec := doRequest(r, "DELETE", "/telegram/link", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
