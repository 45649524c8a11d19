package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sprout/internal/services"
)

// TelegramHandler handles Telegram account linking requests. Link completion
// happens over the bot conversation itself, not through this API surface.
type TelegramHandler struct {
	telegramService services.TelegramServicer
	auditService    services.AuditServicer
}

// NewTelegramHandler creates a new TelegramHandler.
func NewTelegramHandler(telegramService services.TelegramServicer, auditService services.AuditServicer) *TelegramHandler {
	return &TelegramHandler{telegramService: telegramService, auditService: auditService}
}

// GenerateCode generates a new link code for the user
// @Summary     Generate link code
// @Description Generate a short-lived code to link a Telegram account via the bot
// @Tags        telegram
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} object "Link code and expiry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /telegram/link [post]
func (h *TelegramHandler) GenerateCode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	code, expiresAt, err := h.telegramService.GenerateLinkCode(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "GENERATE_TELEGRAM_CODE", "telegram_link", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{
		"link_code":  code,
		"expires_at": expiresAt,
	})
}

// GetLink retrieves the user's Telegram link status
// @Summary     Get Telegram link status
// @Description Get the current Telegram link for the authenticated user
// @Tags        telegram
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.TelegramLink "Link information"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /telegram/link [get]
func (h *TelegramHandler) GetLink(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	link, err := h.telegramService.GetLinkStatus(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}

// Unlink unlinks the user's Telegram account
// @Summary     Unlink Telegram account
// @Description Remove the link between Telegram and the user's account
// @Tags        telegram
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Unlinked"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /telegram/link [delete]
func (h *TelegramHandler) Unlink(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.telegramService.Unlink(userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UNLINK_TELEGRAM", "telegram_link", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Telegram account unlinked successfully"})
}
