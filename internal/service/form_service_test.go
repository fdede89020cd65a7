package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/prize_address/internal/cache"
	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/utils"
)

func newTestFormService(holder *refdata.Holder) (*FormService, *cache.MemorySessionStore) {
	store := cache.NewMemorySessionStore()
	signer := utils.NewSessionSigner("test-secret", time.Hour)
	return NewFormService(holder, store, signer, time.Hour), store
}

func TestFormService_CreateResolvesSite(t *testing.T) {
	svc, _ := newTestFormService(testHolder())

	created, err := svc.Create(context.Background(), "thaideal")
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)

	view := created.View
	assert.False(t, view.InvalidSite)
	require.NotNil(t, view.Site)
	assert.Equal(t, "ThaiDeal", view.Site.Name)
	assert.Equal(t, "/logos/thaideal.png", view.Site.LogoURL)
	assert.Equal(t, "thaideal", view.SiteName)
	assert.Empty(t, view.State.Website)
	assert.Len(t, view.Provinces, 2)
	assert.Empty(t, view.Districts)
	assert.Empty(t, view.Subdistricts)
}

func TestFormService_CreateFlagsUnknownSite(t *testing.T) {
	svc, _ := newTestFormService(testHolder())

	created, err := svc.Create(context.Background(), "nosuchsite")
	require.NoError(t, err)
	assert.True(t, created.View.InvalidSite)
	assert.Nil(t, created.View.Site)
}

func TestFormService_PendingSitesAreNotInvalid(t *testing.T) {
	svc, _ := newTestFormService(refdata.NewHolder())

	created, err := svc.Create(context.Background(), "nosuchsite")
	require.NoError(t, err)
	assert.False(t, created.View.InvalidSite)
	assert.False(t, created.View.Loaded[refdata.DatasetSites])
	assert.Empty(t, created.View.Provinces)
}

func TestFormService_CascadeAndAutofill(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFormService(testHolder())

	created, err := svc.Create(ctx, "ThaiDeal")
	require.NoError(t, err)
	id := created.View.SessionID

	view, err := svc.Update(ctx, id, models.FieldProvince, "10")
	require.NoError(t, err)
	assert.Len(t, view.Districts, 2)

	view, err = svc.Update(ctx, id, models.FieldDistrict, "101")
	require.NoError(t, err)
	assert.Len(t, view.Subdistricts, 2, "province-checked options exclude the misfiled record")

	view, err = svc.Update(ctx, id, models.FieldSubdistrict, "10101")
	require.NoError(t, err)
	assert.Equal(t, "10110", view.State.Postcode)
	assert.False(t, view.PostcodeMismatch)

	view, err = svc.Update(ctx, id, models.FieldPostcode, "10999")
	require.NoError(t, err)
	assert.Equal(t, "10999", view.State.Postcode)
	assert.True(t, view.PostcodeMismatch)

	view, err = svc.Update(ctx, id, models.FieldProvince, "20")
	require.NoError(t, err)
	assert.Equal(t, 0, view.State.District)
	assert.Equal(t, "", view.State.Subdistrict)
	assert.Equal(t, "", view.State.Postcode)
	assert.Len(t, view.Districts, 2)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, view.State, got.State)
}

func TestFormService_DistrictWithoutSubdistricts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFormService(testHolder())

	created, err := svc.Create(ctx, "thaideal")
	require.NoError(t, err)
	id := created.View.SessionID

	_, err = svc.Update(ctx, id, models.FieldProvince, "20")
	require.NoError(t, err)
	view, err := svc.Update(ctx, id, models.FieldDistrict, "202")
	require.NoError(t, err)

	assert.Equal(t, 202, view.State.District)
	assert.NotNil(t, view.Subdistricts)
	assert.Empty(t, view.Subdistricts)
	assert.Equal(t, "", view.State.Postcode)
}

func TestFormService_PostcodeFilledOnceSubdistrictsLoad(t *testing.T) {
	ctx := context.Background()
	holder := refdata.NewHolder()
	svc, store := newTestFormService(holder)

	created, err := svc.Create(ctx, "thaideal")
	require.NoError(t, err)
	id := created.View.SessionID

	for _, change := range [][2]string{
		{models.FieldProvince, "10"},
		{models.FieldDistrict, "101"},
		{models.FieldSubdistrict, "10101"},
	} {
		_, err = svc.Update(ctx, id, change[0], change[1])
		require.NoError(t, err)
	}

	view, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", view.State.Postcode, "nothing to resolve against yet")

	holder.Publish(testSnapshot())

	view, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10110", view.State.Postcode)

	session, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10110", session.State.Postcode)
	assert.False(t, session.PostcodePending)

	// A postcode the user clears afterwards stays cleared.
	_, err = svc.Update(ctx, id, models.FieldPostcode, "")
	require.NoError(t, err)
	view, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", view.State.Postcode)
}

func TestFormService_ResetKeepsSite(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFormService(testHolder())

	created, err := svc.Create(ctx, "thaideal")
	require.NoError(t, err)
	id := created.View.SessionID

	_, err = svc.Update(ctx, id, models.FieldUsername, "player01")
	require.NoError(t, err)

	view, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.FormState{}, view.State, "every field is unset, website included")
	assert.Equal(t, "thaideal", view.SiteName)
	require.NotNil(t, view.Site)
}

func TestFormService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFormService(testHolder())

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)

	created, err := svc.Create(ctx, "thaideal")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.View.SessionID, "nickname", "x")
	assert.ErrorIs(t, err, utils.ErrUnknownField)

	_, err = svc.Update(ctx, created.View.SessionID, models.FieldDistrict, "1o1")
	assert.ErrorIs(t, err, utils.ErrInvalidFieldValue)
}
