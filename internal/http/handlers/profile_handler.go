// Profile and consent HTTP handlers.
//
// This file exposes REST endpoints for the coaching profile and consent
// records:
//   - POST /profile          (create)
//   - GET  /profile          (fetch)
//   - PUT  /profile          (partial update)
//   - PUT  /consent          (grant or withdraw one consent type)
//   - GET  /consent          (list consent records)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/services"
)

// CreateProfileRequest is the JSON payload for creating a profile.
type CreateProfileRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=128" example:"Alex"`
	GoalWeightKG  float64 `json:"goal_weight_kg"`
	HeightCM      float64 `json:"height_cm"`
	ActivityLevel string  `json:"activity_level" example:"moderate"`
	Timezone      string  `json:"timezone" example:"Europe/Amsterdam"`
}

// UpdateProfileRequest is the JSON payload for a partial profile update.
// Pointer fields distinguish "absent" from zero values.
type UpdateProfileRequest struct {
	Name          *string  `json:"name,omitempty"`
	GoalWeightKG  *float64 `json:"goal_weight_kg,omitempty"`
	HeightCM      *float64 `json:"height_cm,omitempty"`
	ActivityLevel *string  `json:"activity_level,omitempty"`
	Timezone      *string  `json:"timezone,omitempty"`
}

// SetConsentRequest is the JSON payload for granting or withdrawing consent.
type SetConsentRequest struct {
	ConsentType          string `json:"consent_type" binding:"required" example:"openai_processing"`
	Granted              *bool  `json:"granted" binding:"required"`
	PrivacyPolicyVersion string `json:"privacy_policy_version" example:"2025-06"`
}

// CreateProfile godoc
// @ID          createProfile
// @Summary     Create the user's coaching profile
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateProfileRequest  true  "Profile payload"
// @Success     201  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse "Profile already exists"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profile [post]
func (h *Handlers) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p := &domain.Profile{
		UserID:        userID(c),
		Name:          strings.TrimSpace(req.Name),
		GoalWeightKG:  req.GoalWeightKG,
		HeightCM:      req.HeightCM,
		ActivityLevel: req.ActivityLevel,
		Timezone:      req.Timezone,
	}
	if err := h.profileSvc.Create(c.Request.Context(), p); err != nil {
		if errors.Is(err, services.ErrProfileExists) {
			fail(c, http.StatusConflict, ErrCodeConflict, "profile already exists")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, p)
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Fetch the user's coaching profile
// @Tags        Profile
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Success     200  {object}  domain.Profile
// @Failure     404  {object}  handlers.ErrorResponse "Profile not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update the user's coaching profile
// @Description Applies a partial update; absent fields are left unchanged.
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.UpdateProfileRequest  true  "Fields to update"
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Profile not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name must not be empty")
			return
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.GoalWeightKG != nil {
		updates["goal_weight_kg"] = *req.GoalWeightKG
	}
	if req.HeightCM != nil {
		updates["height_cm"] = *req.HeightCM
	}
	if req.ActivityLevel != nil {
		updates["activity_level"] = *req.ActivityLevel
	}
	if req.Timezone != nil {
		updates["timezone"] = *req.Timezone
	}
	if len(updates) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "no fields to update")
		return
	}

	p, err := h.profileSvc.Update(c.Request.Context(), userID(c), updates)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// SetConsent godoc
// @ID          setConsent
// @Summary     Grant or withdraw a consent type
// @Description Upserts the user's consent record for one consent type, e.g. "openai_processing".
// @Tags        Consent
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SetConsentRequest  true  "Consent payload"
// @Success     200  {object}  domain.ConsentRecord
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /consent [put]
func (h *Handlers) SetConsent(c *gin.Context) {
	var req SetConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Granted == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "consent_type and granted are required")
		return
	}

	rec, err := h.profileSvc.SetConsent(c.Request.Context(), userID(c),
		strings.TrimSpace(req.ConsentType), *req.Granted, req.PrivacyPolicyVersion)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, rec)
}

// ListConsents godoc
// @ID          listConsents
// @Summary     List the user's consent records
// @Tags        Consent
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Success     200  {array}   domain.ConsentRecord
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /consent [get]
func (h *Handlers) ListConsents(c *gin.Context) {
	recs, err := h.profileSvc.Consents(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, recs)
}
