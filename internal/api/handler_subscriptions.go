package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
)

// putSubscriptionRequest accepts the flat form and the browser's
// PushSubscription.toJSON() shape with nested keys.
type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256DH   string `json:"p256dh"`
	Auth     string `json:"auth"`
	Keys     *struct {
		P256DH string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// PutSubscription handles the creation or replacement of the caller's subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	if req.Keys != nil {
		req.P256DH = firstNonEmpty(req.P256DH, req.Keys.P256DH)
		req.Auth = firstNonEmpty(req.Auth, req.Keys.Auth)
	}
	fields := map[string]string{}
	if req.P256DH == "" {
		fields["p256dh"] = "This field is required"
	}
	if req.Auth == "" {
		fields["auth"] = "This field is required"
	}
	if len(fields) > 0 {
		respondError(c, apperr.Validation("Validation failed", fields))
		return
	}

	subscription := model.PushSubscription{
		Endpoint:  req.Endpoint,
		UserID:    actor.UserID,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
		CreatedAt: h.now().UTC(),
	}
	if err := h.store.SaveSubscription(c.Request.Context(), &subscription); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), actor.UserID, req.Endpoint); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads a query value without URL decoding. Push endpoints are
// compared byte for byte with what the browser registered.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription reports whether the caller's endpoint is registered.
func (h *Handler) GetSubscription(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		respondError(c, apperr.Validation("endpoint is required", map[string]string{"endpoint": "This field is required"}))
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), actor.UserID, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"endpoint": sub.Endpoint, "createdAt": sub.CreatedAt})
}
