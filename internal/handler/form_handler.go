package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/middleware"
	"github.com/GTDGit/prize_address/internal/service"
	"github.com/GTDGit/prize_address/internal/utils"
)

// FormHandler serves the address form session endpoints.
type FormHandler struct {
	forms     *service.FormService
	submitter *service.SubmissionService
	autoClose time.Duration
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(forms *service.FormService, submitter *service.SubmissionService, autoClose time.Duration) *FormHandler {
	return &FormHandler{forms: forms, submitter: submitter, autoClose: autoClose}
}

// CreateFormRequest starts a session for the site named in the page URL.
type CreateFormRequest struct {
	Site string `json:"site"`
}

// UpdateFieldRequest changes a single form field. Value may be a string, a
// number or null; numbers are kept in their decimal form.
type UpdateFieldRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// CreateForm starts a new form session.
// POST /v1/forms
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	created, err := h.forms.Create(c.Request.Context(), req.Site)
	if err != nil {
		log.Error().Err(err).Str("site", req.Site).Msg("Failed to create form session")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create form session")
		return
	}

	utils.SuccessWithNotice(c, http.StatusCreated, "Form session created", created, h.siteNotice(created.View))
}

// GetForm returns the current form view.
// GET /v1/forms/current
func (h *FormHandler) GetForm(c *gin.Context) {
	view, err := h.forms.Get(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.SuccessWithNotice(c, http.StatusOK, "Form retrieved", view, h.siteNotice(view))
}

// UpdateField applies one field change.
// PATCH /v1/forms/current
func (h *FormHandler) UpdateField(c *gin.Context) {
	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	value, ok := fieldValue(req.Value)
	if !ok {
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidFieldValue.Error(), "Field value must be a string or a number")
		return
	}

	view, err := h.forms.Update(c.Request.Context(), middleware.SessionID(c), req.Field, value)
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Form updated", view)
}

// ResetForm clears every field.
// DELETE /v1/forms/current
func (h *FormHandler) ResetForm(c *gin.Context) {
	view, err := h.forms.Reset(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Form reset", view)
}

// SubmitForm forwards the form to the prize API.
// POST /v1/forms/current/submit
func (h *FormHandler) SubmitForm(c *gin.Context) {
	outcome, err := h.submitter.Submit(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	if outcome.Success {
		utils.SuccessWithNotice(c, http.StatusOK, outcome.Message, outcome, outcome.Notice)
		return
	}
	utils.ErrorWithNotice(c, http.StatusBadGateway, "SUBMISSION_FAILED", outcome.Message, outcome, outcome.Notice)
}

// GetSubmission returns the audit record of a submission made by this session.
// GET /v1/forms/current/submissions/:submission_id
func (h *FormHandler) GetSubmission(c *gin.Context) {
	rec, err := h.submitter.Receipt(c.Request.Context(), middleware.SessionID(c), c.Param("submission_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Submission retrieved", rec.ToResponse())
}

func (h *FormHandler) siteNotice(view *service.FormView) *utils.Notification {
	if view == nil || !view.InvalidSite {
		return nil
	}
	return utils.Toast(utils.LevelError, InvalidSiteMessage, h.autoClose)
}

func (h *FormHandler) handleError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ErrorWithNotice(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message(),
			gin.H{"field": verr.Field, "reason": verr.Reason}, utils.Alert(verr.Message()))
	case errors.Is(err, utils.ErrSessionNotFound):
		utils.Error(c, http.StatusNotFound, utils.ErrSessionNotFound.Error(), "Form session not found or expired")
	case errors.Is(err, utils.ErrUnknownField):
		utils.Error(c, http.StatusBadRequest, utils.ErrUnknownField.Error(), err.Error())
	case errors.Is(err, utils.ErrInvalidFieldValue):
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidFieldValue.Error(), err.Error())
	case errors.Is(err, utils.ErrInvalidSite):
		utils.ErrorWithNotice(c, http.StatusUnprocessableEntity, utils.ErrInvalidSite.Error(), InvalidSiteMessage, nil,
			utils.Toast(utils.LevelError, InvalidSiteMessage, h.autoClose))
	case errors.Is(err, utils.ErrSubmissionNotFound):
		utils.Error(c, http.StatusNotFound, utils.ErrSubmissionNotFound.Error(), "Submission not found")
	case errors.Is(err, utils.ErrAuditUnavailable):
		utils.Error(c, http.StatusServiceUnavailable, utils.ErrAuditUnavailable.Error(), "Submission history is not available")
	case errors.Is(err, utils.ErrSubmissionInProgress):
		utils.Error(c, http.StatusConflict, utils.ErrSubmissionInProgress.Error(), "A submission for this form is already in progress")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Form request failed")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func fieldValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	}
	return "", false
}
