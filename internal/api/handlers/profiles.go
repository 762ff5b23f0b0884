package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/troikatech/care-voice/pkg/errors"
	"github.com/troikatech/care-voice/pkg/middleware"
	"github.com/troikatech/care-voice/pkg/profile"
	"github.com/troikatech/care-voice/pkg/utils"
)

const profileTimeout = 5 * time.Second

var invalidGender = errors.InvalidParam{Name: "gender", Reason: "must be one of male, female, neutral"}

func normalizeGender(g *profile.Gender) (*profile.Gender, bool) {
	if g == nil {
		return nil, true
	}
	parsed, ok := profile.ParseGender(string(*g))
	if !ok {
		return nil, false
	}
	return &parsed, true
}

func normalizeLanguage(l *string) *string {
	if l == nil {
		return nil
	}
	tag := utils.NormalizeLanguageTag(*l)
	return &tag
}

func sanitizeName(n *string) *string {
	if n == nil {
		return nil
	}
	name := middleware.SanitizeString(*n)
	return &name
}

func (h *Handler) CreateProfile(c *gin.Context) {
	var req profile.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BindingError(c, err)
		return
	}

	req.PhoneNumber = middleware.SanitizeString(req.PhoneNumber)
	if req.PhoneNumber == "" {
		errors.ValidationFailed(c, errors.InvalidParam{Name: "phone_number", Reason: "is required"})
		return
	}
	if !utils.ValidCallerID(req.PhoneNumber) {
		errors.ValidationFailed(c, errors.InvalidParam{Name: "phone_number", Reason: "must not contain spaces, slashes or control characters"})
		return
	}
	gender, ok := normalizeGender(req.Gender)
	if !ok {
		errors.ValidationFailed(c, invalidGender)
		return
	}
	req.Gender = gender
	req.LanguageCode = normalizeLanguage(req.LanguageCode)
	req.Name = sanitizeName(req.Name)

	ctx, cancel := context.WithTimeout(c.Request.Context(), profileTimeout)
	defer cancel()

	p, err := h.profiles.Create(ctx, req)
	if stderrors.Is(err, profile.ErrConflict) {
		errors.Conflict(c, "Profile already exists for this phone")
		return
	}
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}
	if h.redisClient != nil {
		middleware.StoreIdempotencyResponse(c, h.redisClient, http.StatusCreated, body)
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

func (h *Handler) GetProfileByPhone(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), profileTimeout)
	defer cancel()

	p, err := h.profiles.GetByPhone(ctx, c.GetString("phone"))
	if stderrors.Is(err, profile.ErrNotFound) {
		errors.NotFound(c, "Profile not found")
		return
	}
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profile.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BindingError(c, err)
		return
	}

	gender, ok := normalizeGender(req.Gender)
	if !ok {
		errors.ValidationFailed(c, invalidGender)
		return
	}
	req.Gender = gender
	req.LanguageCode = normalizeLanguage(req.LanguageCode)
	req.Name = sanitizeName(req.Name)

	ctx, cancel := context.WithTimeout(c.Request.Context(), profileTimeout)
	defer cancel()

	p, err := h.profiles.Update(ctx, c.GetString("id"), req)
	if stderrors.Is(err, profile.ErrNotFound) {
		errors.NotFound(c, "Profile not found")
		return
	}
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	pagination := utils.ParsePagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), profileTimeout)
	defer cancel()

	profiles, total, err := h.profiles.List(ctx, pagination.Skip(), int64(pagination.Limit))
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, utils.PaginatedResponse{
		Data:  profiles,
		Page:  pagination.Page,
		Limit: pagination.Limit,
		Total: total,
		Count: len(profiles),
	})
}
