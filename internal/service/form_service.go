package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/cache"
	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/utils"
)

// FormView is the state of a session plus everything the browser derives
// from it: the option lists of the dependent dropdowns and the site header.
type FormView struct {
	SessionID        string                       `json:"sessionId"`
	SiteName         string                       `json:"siteName"`
	State            models.FormState             `json:"state"`
	Site             *models.SiteResponse         `json:"site,omitempty"`
	InvalidSite      bool                         `json:"invalidSite"`
	Provinces        []models.ProvinceResponse    `json:"provinces"`
	Districts        []models.DistrictResponse    `json:"districts"`
	Subdistricts     []models.SubdistrictResponse `json:"subdistricts"`
	PostcodeMismatch bool                         `json:"postcodeMismatch"`
	Loaded           map[refdata.Dataset]bool     `json:"loaded"`
}

// CreatedForm is returned when a new session starts.
type CreatedForm struct {
	Token string    `json:"token"`
	View  *FormView `json:"form"`
}

// FormService owns the lifecycle of form sessions.
type FormService struct {
	holder *refdata.Holder
	store  cache.SessionStore
	signer *utils.SessionSigner
	ttl    time.Duration
	now    func() time.Time
}

// NewFormService constructs a FormService.
func NewFormService(holder *refdata.Holder, store cache.SessionStore, signer *utils.SessionSigner, ttl time.Duration) *FormService {
	return &FormService{
		holder: holder,
		store:  store,
		signer: signer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Selector returns a selector over the currently published snapshot.
func (s *FormService) Selector() *Selector {
	return NewSelector(s.holder.Snapshot())
}

// Create starts a session for siteName, which may also be the page path
// (its last segment names the site). An unknown site is flagged on the
// session, not rejected; the site is re-resolved on every view so a later
// registry load can still recognise it.
func (s *FormService) Create(ctx context.Context, siteName string) (*CreatedForm, error) {
	siteName = refdata.SiteNameFromPath(strings.TrimSpace(siteName))
	now := s.now()
	session := &models.FormSession{
		ID:        uuid.New().String(),
		SiteName:  siteName,
		State:     NewFormState(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save form session: %w", err)
	}

	token, err := s.signer.GenerateSessionToken(session.ID, siteName)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Str("site", siteName).
		Msg("Form session created")

	return &CreatedForm{Token: token, View: s.view(session)}, nil
}

// Get returns the current view of a session.
func (s *FormService) Get(ctx context.Context, id string) (*FormView, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if backfillPostcode(session, s.Selector()) {
		session.UpdatedAt = s.now()
		if err := s.store.Save(ctx, session, s.ttl); err != nil {
			return nil, fmt.Errorf("failed to save form session: %w", err)
		}
	}
	return s.view(session), nil
}

// Update applies one field change, runs the postcode reaction when the
// change touches the address selection, and stores the result.
func (s *FormService) Update(ctx context.Context, id, field, value string) (*FormView, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := ApplyFieldChange(session.State, field, value)
	if err != nil {
		return nil, err
	}
	sel := s.Selector()
	switch {
	case TriggersReconcile(field):
		next = Reconcile(next, sel)
		_, resolved := sel.ResolvePostalCode(next.Subdistrict, next.Province, next.District)
		session.PostcodePending = next.Subdistrict != "" && !resolved
	case field == models.FieldPostcode:
		session.PostcodePending = false
	}

	session.State = next
	backfillPostcode(session, sel)
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save form session: %w", err)
	}

	log.Debug().
		Str("session_id", id).
		Str("field", field).
		Msg("Form field updated")

	return s.view(session), nil
}

// Reset clears every field of the session. The site stays attached to the
// session itself, not to the website field.
func (s *FormService) Reset(ctx context.Context, id string) (*FormView, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reset(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session), nil
}

func (s *FormService) reset(ctx context.Context, session *models.FormSession) error {
	session.State = Reset()
	session.PostcodePending = false
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return fmt.Errorf("failed to save form session: %w", err)
	}
	return nil
}

// backfillPostcode fills the postcode of a subdistrict that was chosen while
// the subdistrict dataset was still loading. It reports whether it did.
func backfillPostcode(session *models.FormSession, sel *Selector) bool {
	if !session.PostcodePending {
		return false
	}
	postal, ok := sel.ResolvePostalCode(session.State.Subdistrict, session.State.Province, session.State.District)
	if !ok {
		return false
	}
	session.State.Postcode = postal
	session.PostcodePending = false
	return true
}

// resolveSite fills Site and InvalidSite from the current registry. While
// the registry is not loaded the site is neither valid nor invalid.
func (s *FormService) resolveSite(session *models.FormSession, snap *refdata.Snapshot) {
	session.Site = nil
	session.InvalidSite = false
	if !snap.Loaded(refdata.DatasetSites) {
		return
	}
	site, ok := snap.ResolveSite(session.SiteName)
	if !ok {
		session.InvalidSite = true
		return
	}
	session.Site = &site
}

func (s *FormService) view(session *models.FormSession) *FormView {
	snap := s.holder.Snapshot()
	sel := NewSelector(snap)
	s.resolveSite(session, snap)

	v := &FormView{
		SessionID:        session.ID,
		SiteName:         session.SiteName,
		State:            session.State,
		InvalidSite:      session.InvalidSite,
		Provinces:        make([]models.ProvinceResponse, 0, len(snap.Provinces())),
		Districts:        []models.DistrictResponse{},
		Subdistricts:     []models.SubdistrictResponse{},
		PostcodeMismatch: PostcodeMismatch(session.State, sel),
		Loaded:           make(map[refdata.Dataset]bool, len(refdata.Datasets)),
	}
	if session.Site != nil {
		resp := session.Site.ToResponse()
		v.Site = &resp
	}
	for _, ds := range refdata.Datasets {
		v.Loaded[ds] = snap.Loaded(ds)
	}
	for _, p := range snap.Provinces() {
		v.Provinces = append(v.Provinces, p.ToResponse())
	}
	for _, d := range sel.DistrictsFor(session.State.Province) {
		v.Districts = append(v.Districts, d.ToResponse())
	}
	for _, sd := range sel.SubdistrictsWithin(session.State.Province, session.State.District) {
		v.Subdistricts = append(v.Subdistricts, sd.ToResponse())
	}
	return v
}
