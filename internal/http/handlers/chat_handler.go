// Chat and photo-analysis HTTP handlers.
//
//   - POST /chat            (one exchange with the AI coach)
//   - POST /photo-analysis  (extract a meal estimate from a photo)
//
// Both paths require the "openai_processing" consent; a missing grant is a
// 403 with code "consent_required", never an implicit opt-in.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nourish-labs/go-coach-backend/internal/services"
)

// ChatRequest is the JSON payload for one chat exchange.
type ChatRequest struct {
	Message string `json:"message" binding:"required,min=1" example:"I skipped my run again today."`
}

// PhotoAnalysisRequest is the JSON payload for meal photo analysis. The
// image is passed by URL (or data URL); the server never stores it.
type PhotoAnalysisRequest struct {
	ImageURL string `json:"image_url" binding:"required,min=1" example:"https://cdn.example.com/meals/123.jpg"`
}

// Chat godoc
// @ID          chat
// @Summary     Send a message to the AI coach
// @Description Sends one message and returns the coach's reply. The exchange is persisted as an interaction log.
// @Tags        Coach
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.ChatRequest  true  "Message payload"
// @Success     200  {object}  services.ChatResult
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse "Consent required"
// @Failure     502  {object}  handlers.ErrorResponse "Coach unavailable"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is required")
		return
	}

	res, err := h.coachSvc.Chat(c.Request.Context(), userID(c), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is empty")
		case errors.Is(err, services.ErrMessageTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message too long")
		case errors.Is(err, services.ErrConsentRequired):
			fail(c, http.StatusForbidden, ErrCodeConsentRequired, "openai_processing consent required")
		case errors.Is(err, services.ErrCoachUnavailable):
			fail(c, http.StatusBadGateway, ErrCodeChatFailed, "coach is temporarily unavailable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeChatFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}

// AnalyzePhoto godoc
// @ID          analyzePhoto
// @Summary     Analyze a meal photo
// @Description Sends the photo to the vision model and persists the parsed nutrition estimate as a meal log.
// @Tags        Coach
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.PhotoAnalysisRequest  true  "Photo payload"
// @Success     201  {object}  domain.MealLog
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse "Consent required"
// @Failure     502  {object}  handlers.ErrorResponse "Analysis failed"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /photo-analysis [post]
func (h *Handlers) AnalyzePhoto(c *gin.Context) {
	var req PhotoAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image_url is required")
		return
	}

	meal, err := h.coachSvc.AnalyzeMealPhoto(c.Request.Context(), userID(c), strings.TrimSpace(req.ImageURL))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConsentRequired):
			fail(c, http.StatusForbidden, ErrCodeConsentRequired, "openai_processing consent required")
		case errors.Is(err, services.ErrCoachUnavailable):
			fail(c, http.StatusBadGateway, ErrCodeAnalysisFailed, "photo analysis is temporarily unavailable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeAnalysisFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, meal)
}
