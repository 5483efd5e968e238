package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/auth"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/payment"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/service"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrNotAuthenticated, 401},
		{auth.ErrForbidden, 403},
		{gorm.ErrRecordNotFound, 404},
		{service.ErrInvalidTransition, 409},
		{payment.ErrRefundUnsupported, 409},
		{payment.ErrGatewayConfig, 422},
		{payment.ErrNetwork, 502},
		{errors.New("boom"), 500},
		{nil, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForError(tt.err), "%v", tt.err)
	}
}

func TestStatusForErrorSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("refund order 9: %w", auth.ErrForbidden)
	assert.Equal(t, 403, StatusForError(wrapped))

	wrapped = fmt.Errorf("gateway refund: %w", payment.ErrRefundUnsupported)
	assert.Equal(t, 409, StatusForError(wrapped))
}
