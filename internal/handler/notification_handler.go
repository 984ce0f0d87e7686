package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/wealthpath/notifications/internal/apperror"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/internal/service"
)

type PreferenceServiceInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error)
	Update(ctx context.Context, userID uuid.UUID, input service.UpdatePreferencesInput) (*model.NotificationPreferences, error)
}

type SmartSendServiceInterface interface {
	Send(ctx context.Context, req service.SendRequest) (service.SendResult, error)
}

type NotificationHandler struct {
	prefs  PreferenceServiceInterface
	sender SmartSendServiceInterface
}

func NewNotificationHandler(prefs PreferenceServiceInterface, sender SmartSendServiceInterface) *NotificationHandler {
	return &NotificationHandler{prefs: prefs, sender: sender}
}

// GetPreferences returns notification preferences for the current user
// @Summary Get notification preferences
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.NotificationPreferences
// @Router /api/notifications/preferences [get]
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == uuid.Nil {
		respondAppError(w, apperror.Unauthorized(""))
		return
	}

	prefs, err := h.prefs.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences updates notification preferences for the current user
// @Summary Update notification preferences
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.UpdatePreferencesInput true "Fields to change"
// @Success 200 {object} model.NotificationPreferences
// @Failure 400 {object} ErrorResponse
// @Router /api/notifications/preferences [put]
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == uuid.Nil {
		respondAppError(w, apperror.Unauthorized(""))
		return
	}

	var input service.UpdatePreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body"))
		return
	}

	prefs, err := h.prefs.Update(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

type sendRequest struct {
	Type  model.NotificationType `json:"type"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  model.NotificationData `json:"data,omitempty"`
}

// Send delivers a notification to the current user unless throttled
// @Summary Send a notification
// @Description Throttled sends return 429; sends during quiet hours return 409
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body sendRequest true "Notification"
// @Success 200 {object} service.SendResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/notifications/send [post]
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == uuid.Nil {
		respondAppError(w, apperror.Unauthorized(""))
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body"))
		return
	}

	result, err := h.sender.Send(r.Context(), service.SendRequest{
		UserID: userID,
		Type:   req.Type,
		Title:  req.Title,
		Body:   req.Body,
		Data:   req.Data,
	})
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
