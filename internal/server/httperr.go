package server

import (
	"errors"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/auth"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/payment"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/service"
)

// StatusForError maps the closed error-kind set onto transport codes, so
// an authorization failure is distinguishable from a server fault.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		return 401
	case errors.Is(err, auth.ErrForbidden):
		return 403
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 404
	case errors.Is(err, service.ErrInvalidTransition):
		return 409
	case errors.Is(err, payment.ErrRefundUnsupported):
		return 409
	case errors.Is(err, payment.ErrGatewayConfig):
		return 422
	case errors.Is(err, payment.ErrNetwork):
		return 502
	}
	return 500
}

// Fail renders err with its mapped status in the standard envelope.
func Fail(ctx iris.Context, err error) {
	code := StatusForError(err)
	ctx.StopWithJSON(code, iris.Map{"code": code, "msg": err.Error()})
}
