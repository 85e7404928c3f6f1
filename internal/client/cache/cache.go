package cache

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/pudo/internal/client/securestore"
	"github.com/dmitrijs2005/pudo/internal/logging"
)

// CredentialCache reads and writes the auth records on top of a secure store.
// It never performs network calls.
type CredentialCache struct {
	store securestore.Store
	log   logging.Logger
}

func New(store securestore.Store, log logging.Logger) *CredentialCache {
	return &CredentialCache{store: store, log: log}
}

// Get returns the record stored under key, or nil when the key is unknown,
// absent, unreadable or does not decode into a valid record.
func (c *CredentialCache) Get(ctx context.Context, key Key) Record {
	rec, ok := newRecord(key)
	if !ok {
		return nil
	}

	raw, err := c.store.Get(ctx, string(key))
	if err != nil {
		c.log.Warn(ctx, "secure store read failed", "key", key, "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	if err := json.Unmarshal(raw, rec); err != nil {
		c.log.Warn(ctx, "discarding undecodable record", "key", key, "error", err)
		return nil
	}
	if !rec.valid() {
		c.log.Warn(ctx, "discarding invalid record", "key", key)
		return nil
	}
	return rec
}

// Put encodes rec and writes it under rec.Key(). Failures are logged only.
func (c *CredentialCache) Put(ctx context.Context, rec Record) {
	key := rec.Key()

	raw, err := json.Marshal(rec)
	if err != nil {
		c.log.Error(ctx, "record encoding failed", "key", key, "error", err)
		return
	}

	if err := c.store.Set(ctx, string(key), raw); err != nil {
		c.log.Warn(ctx, "secure store write failed", "key", key, "error", err)
	}
}

// Delete removes the record under key. Failures are logged only.
func (c *CredentialCache) Delete(ctx context.Context, key Key) {
	if err := c.store.Delete(ctx, string(key)); err != nil {
		c.log.Warn(ctx, "secure store delete failed", "key", key, "error", err)
	}
}

// Purge drops the cached credential and the biometric preference, including
// the legacy credential key. The change-password flag is kept.
func (c *CredentialCache) Purge(ctx context.Context) {
	err := securestore.DeleteAll(ctx, c.store,
		string(KeyCredential), string(legacyCredentialKey), string(KeyFaceAuth))
	if err != nil {
		c.log.Warn(ctx, "secure store purge failed", "error", err)
		return
	}
	c.log.Info(ctx, "cached credential and biometric preference purged")
}

// Credential returns the cached credential or nil.
func (c *CredentialCache) Credential(ctx context.Context) *CachedCredential {
	cred, _ := c.Get(ctx, KeyCredential).(*CachedCredential)
	return cred
}

// FaceAuth returns the biometric opt-in answer or nil if never asked.
func (c *CredentialCache) FaceAuth(ctx context.Context) *FaceAuthPreference {
	pref, _ := c.Get(ctx, KeyFaceAuth).(*FaceAuthPreference)
	return pref
}

// ChangePassword returns the pending-reset flag or nil.
func (c *CredentialCache) ChangePassword(ctx context.Context) *ChangePasswordFlag {
	flag, _ := c.Get(ctx, KeyChangePassword).(*ChangePasswordFlag)
	return flag
}
