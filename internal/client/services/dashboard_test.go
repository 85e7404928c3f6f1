package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/pudo/internal/client/cache"
	"github.com/dmitrijs2005/pudo/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignOut(t *testing.T) {
	h := newHarness(t)
	h.signedIn(verified)
	h.backend.signOutErr = client.ErrUnavailable

	step, ferr := h.svc.SignOut(context.Background())
	require.Nil(t, ferr)
	assert.Equal(t, StateManualEntry, step.State)
	assert.Equal(t, 1, h.backend.count("SignOut"))

	sess, ok := h.svc.Session()
	assert.False(t, ok)
	assert.Equal(t, client.Session{}, sess)
}

func TestChangeEmail(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signedIn(verified)
	h.cache.Put(ctx, cache.CachedCredential{User: "a@b.com", Password: "pw"})
	h.dir.records["uid-1"] = client.DirectoryRecord{Email: "a@b.com", Phone: "+15551234567"}

	step, ferr := h.svc.ChangeEmail(ctx, "new@b.com")
	require.Nil(t, ferr)
	assert.Equal(t, StateManualEntry, step.State)
	assert.NotEmpty(t, step.Notice)

	assert.Equal(t, []string{"new@b.com"}, h.backend.updateEmails)
	assert.Equal(t, &cache.CachedCredential{User: "new@b.com", Password: "pw"}, h.cache.Credential(ctx))
	assert.Equal(t, client.DirectoryRecord{Email: "new@b.com", Phone: "+15551234567"}, h.dir.records["uid-1"])
	assert.Equal(t, 1, h.backend.count("SignOut"))

	_, ok := h.svc.Session()
	assert.False(t, ok)
}

func TestChangeEmail_NoCachedCredential(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := verified
	s.Phone = "+15550000000"
	h.signedIn(s)

	_, ferr := h.svc.ChangeEmail(ctx, "new@b.com")
	require.Nil(t, ferr)
	assert.Nil(t, h.cache.Credential(ctx))
	assert.Equal(t, client.DirectoryRecord{Email: "new@b.com", Phone: "+15550000000"}, h.dir.records["uid-1"])
}

func TestChangeEmail_DirectoryReadFailsKeepsRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signedIn(verified)
	h.dir.records["uid-1"] = client.DirectoryRecord{Email: "a@b.com", Phone: "+15551234567"}
	h.dir.recordErrs = []error{client.ErrUnavailable}

	step, ferr := h.svc.ChangeEmail(ctx, "new@b.com")
	require.Nil(t, ferr)
	assert.Equal(t, StateManualEntry, step.State)
	assert.Contains(t, step.Notice, "may take a while")
	assert.Equal(t, []string{"new@b.com"}, h.backend.updateEmails)
	assert.Equal(t, client.DirectoryRecord{Email: "a@b.com", Phone: "+15551234567"}, h.dir.records["uid-1"])
}

func TestChangeEmail_Invalid(t *testing.T) {
	h := newHarness(t)
	h.signedIn(verified)

	step, ferr := h.svc.ChangeEmail(context.Background(), "not-an-email")
	require.NotNil(t, ferr)
	assert.Equal(t, KindInvalidInput, ferr.Kind)
	assert.Equal(t, StateAuthenticated, step.State)
	assert.Zero(t, h.backend.count("UpdateEmail"))
}

func TestChangeEmail_BackendRejects(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signedIn(verified)
	h.cache.Put(ctx, cache.CachedCredential{User: "a@b.com", Password: "pw"})
	h.backend.updateErr = client.ErrAlreadyInUse

	step, ferr := h.svc.ChangeEmail(ctx, "taken@b.com")
	require.NotNil(t, ferr)
	assert.Equal(t, KindConflict, ferr.Kind)
	assert.Equal(t, StateAuthenticated, step.State)
	assert.Equal(t, "a@b.com", h.cache.Credential(ctx).User)
	assert.Zero(t, h.backend.count("SignOut"))
}

func TestDisableBiometrics(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signedIn(verified)
	h.cache.Put(ctx, cache.FaceAuthPreference{Answer: cache.AnswerYes})
	h.cache.Put(ctx, cache.CachedCredential{User: "a@b.com", Password: "pw"})

	step, ferr := h.svc.DisableBiometrics(ctx)
	require.Nil(t, ferr)
	assert.Equal(t, StateAuthenticated, step.State)
	assert.Equal(t, `{"answer":"NO"}`, h.raw(t, cache.KeyFaceAuth))
	assert.Nil(t, h.cache.Credential(ctx))
}
