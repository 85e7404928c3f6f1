package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/pudo/internal/client/biometric"
	"github.com/dmitrijs2005/pudo/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{client.ErrWrongSecret, KindCredentialRejected},
		{client.ErrDisabled, KindCredentialRejected},
		{client.ErrInvalidCode, KindCredentialRejected},
		{client.ErrInvalidHandle, KindCredentialRejected},
		{client.ErrNotFound, KindNotRegistered},
		{client.ErrInvalidIdentifier, KindInvalidInput},
		{client.ErrWeakSecret, KindInvalidInput},
		{client.ErrAlreadyLinked, KindConflict},
		{client.ErrAlreadyInUse, KindConflict},
		{client.ErrUnavailable, KindUnavailable},
		{fmt.Errorf("redis: %w", client.ErrUnavailable), KindUnavailable},
		{biometric.ErrUnavailable, KindUnavailable},
		{errors.New("boom"), KindUnexpected},
	}

	for _, tt := range tests {
		ferr := classify("op", tt.err)
		assert.Equal(t, tt.want, ferr.Kind, tt.err.Error())
		assert.ErrorIs(t, ferr, tt.err)
		assert.NotEmpty(t, ferr.Message)
	}
}

func TestFlowError(t *testing.T) {
	ferr := newFlowError(KindNotRegistered, "submit identifier", msgEmailNotFound, nil)
	var err error = ferr

	require.ErrorIs(t, err, &FlowError{Kind: KindNotRegistered})
	require.NotErrorIs(t, err, &FlowError{Kind: KindConflict})
	assert.Equal(t, KindNotRegistered, KindOf(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
	assert.Equal(t, "submit identifier: "+msgEmailNotFound, ferr.Error())

	wrapped := newFlowError(KindUnexpected, "op", msgGeneric, ErrBusy)
	assert.ErrorIs(t, wrapped, ErrBusy)
	assert.Contains(t, wrapped.Error(), ErrBusy.Error())
	assert.Equal(t, "Conflict", KindConflict.String())
}
