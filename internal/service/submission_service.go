package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/cache"
	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
	"github.com/GTDGit/prize_address/pkg/prize"
)

// SuccessMessage is shown after the prize API accepted a submission.
const SuccessMessage = "บันทึกสำเร็จ"

// PrizeSubmitter sends one payload to the prize API.
type PrizeSubmitter interface {
	Submit(ctx context.Context, payload *models.PrizePayload) (*prize.Result, error)
}

// SubmissionRecorder persists and reads back the audit trail of submissions.
type SubmissionRecorder interface {
	Create(ctx context.Context, s *models.Submission) error
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.Submission, error)
}

// SubmitOutcome is the result of a submission that reached the prize API
// (or failed trying to).
type SubmitOutcome struct {
	SubmissionID string              `json:"submissionId"`
	Success      bool                `json:"success"`
	StatusCode   int                 `json:"statusCode,omitempty"`
	Message      string              `json:"message"`
	Notice       *utils.Notification `json:"-"`
	Form         *FormView           `json:"form"`
}

// SubmissionOptions tunes the submission gateway.
type SubmissionOptions struct {
	EnforceSite bool
	LockTTL     time.Duration
	AutoClose   time.Duration
}

// SubmissionService validates a form session and forwards it to the prize API.
type SubmissionService struct {
	forms    *FormService
	store    cache.SessionStore
	client   PrizeSubmitter
	recorder SubmissionRecorder
	opts     SubmissionOptions
	policy   *bluemonday.Policy
}

// NewSubmissionService constructs a SubmissionService. recorder may be nil.
func NewSubmissionService(forms *FormService, store cache.SessionStore, client PrizeSubmitter, recorder SubmissionRecorder, opts SubmissionOptions) *SubmissionService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = time.Minute
	}
	if opts.AutoClose <= 0 {
		opts.AutoClose = 5 * time.Second
	}
	return &SubmissionService{
		forms:    forms,
		store:    store,
		client:   client,
		recorder: recorder,
		opts:     opts,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Submit validates the session's state and, when it passes, sends exactly
// one request to the prize API.
//
// Returned errors are local refusals, none of which contacted the API:
// *ValidationError, utils.ErrInvalidSite, utils.ErrSubmissionInProgress or
// session lookup errors. API and transport failures are reported in the
// outcome with Success false.
func (s *SubmissionService) Submit(ctx context.Context, sessionID string) (*SubmitOutcome, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap := s.forms.holder.Snapshot()
	backfillPostcode(session, NewSelector(snap))
	if verr := Validate(session.State); verr != nil {
		return nil, verr
	}

	s.forms.resolveSite(session, snap)
	if s.opts.EnforceSite && session.Site == nil {
		return nil, utils.ErrInvalidSite
	}

	acquired, err := s.store.AcquireSubmitLock(ctx, sessionID, s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, utils.ErrSubmissionInProgress
	}
	defer func() {
		if err := s.store.ReleaseSubmitLock(context.WithoutCancel(ctx), sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to release submit lock")
		}
	}()

	payload := s.BuildPayload(session, NewSelector(snap))
	outcome := &SubmitOutcome{SubmissionID: uuid.New().String()}

	result, err := s.client.Submit(ctx, payload)
	var apiErr *prize.APIError
	switch {
	case err == nil:
		outcome.Success = true
		outcome.StatusCode = result.StatusCode
		outcome.Message = SuccessMessage
		outcome.Notice = utils.Toast(utils.LevelSuccess, SuccessMessage, s.opts.AutoClose)
	case errors.As(err, &apiErr):
		outcome.StatusCode = apiErr.StatusCode
		outcome.Message = apiErr.Message
		outcome.Notice = utils.Toast(utils.LevelError, apiErr.Message, s.opts.AutoClose)
	default:
		outcome.Message = prize.TransportErrorMessage
		outcome.Notice = utils.Toast(utils.LevelError, prize.TransportErrorMessage, s.opts.AutoClose)
	}

	s.record(ctx, session, payload, outcome, err)

	if outcome.Success {
		if err := s.forms.reset(ctx, session); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to reset form after submission")
		}
	}
	outcome.Form = s.forms.view(session)

	log.Info().
		Str("session_id", sessionID).
		Str("submission_id", outcome.SubmissionID).
		Bool("success", outcome.Success).
		Int("status_code", outcome.StatusCode).
		Msg("Prize submission finished")

	return outcome, nil
}

// Receipt returns the audit record of one of the session's own submissions.
// Records of other sessions are reported as not found.
func (s *SubmissionService) Receipt(ctx context.Context, sessionID, submissionID string) (*models.Submission, error) {
	if s.recorder == nil {
		return nil, utils.ErrAuditUnavailable
	}
	rec, err := s.recorder.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if rec.SessionID != sessionID {
		return nil, utils.ErrSubmissionNotFound
	}
	return rec, nil
}

// BuildPayload maps a session to the prize API body. Codes become Thai
// display names; free text is stripped of markup.
func (s *SubmissionService) BuildPayload(session *models.FormSession, sel *Selector) *models.PrizePayload {
	st := session.State
	site := session.SiteName
	if session.Site != nil {
		site = session.Site.Name
	}
	return &models.PrizePayload{
		Site:        site,
		Name:        s.clean(st.ReceiverName),
		Username:    s.clean(st.Username),
		Phone:       strings.TrimSpace(st.Phone),
		Provinces:   sel.ProvinceName(st.Province),
		District:    sel.DistrictName(st.District),
		SubDistrict: sel.SubdistrictName(st.Subdistrict, st.Province, st.District),
		Village:     s.clean(st.Village),
		Alley:       s.clean(st.Soi),
		Road:        s.clean(st.Road),
		House:       s.clean(st.HouseNo),
		PostalCode:  strings.TrimSpace(st.Postcode),
		Status:      models.PrizeStatusPending,
	}
}

// clean strips markup and undoes the entity escaping the sanitizer adds, so
// Thai text and characters like "&" reach the API unchanged.
func (s *SubmissionService) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func (s *SubmissionService) record(ctx context.Context, session *models.FormSession, payload *models.PrizePayload, outcome *SubmitOutcome, submitErr error) {
	if s.recorder == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal submission audit payload")
		return
	}

	rec := &models.Submission{
		SubmissionID: outcome.SubmissionID,
		SessionID:    session.ID,
		SiteName:     payload.Site,
		Username:     payload.Username,
		Payload:      body,
		HTTPStatus:   outcome.StatusCode,
	}
	switch {
	case outcome.Success:
		rec.Status = models.SubmissionSuccess
	case outcome.StatusCode != 0:
		rec.Status = models.SubmissionRejected
	default:
		rec.Status = models.SubmissionFailed
	}
	if submitErr != nil {
		msg := submitErr.Error()
		rec.ErrorMessage = &msg
	}

	if err := s.recorder.Create(context.WithoutCancel(ctx), rec); err != nil {
		log.Error().Err(err).
			Str("submission_id", rec.SubmissionID).
			Msg("Failed to store submission audit record")
	}
}
