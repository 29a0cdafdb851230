package api

import (
	"context"
	"net/http"

	"github.com/sidereusnuntius/campus/internal/client"
	"github.com/sidereusnuntius/campus/internal/domain"
)

func (a *API) Login(ctx context.Context, email, password string) (res domain.AuthResult, err error) {
	err = a.call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": email, "password": password},
		Public: true,
	}, "", &res)
	return
}

// Register creates a pending account. The backend answers with a message asking the user to enter
// the code sent to their email.
func (a *API) Register(ctx context.Context, in domain.Registration) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	err := a.call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   in,
		Public: true,
	}, "", &res)
	return res.Message, err
}

func (a *API) VerifyEmail(ctx context.Context, email, otp string) (res domain.AuthResult, err error) {
	err = a.call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/verify-email",
		Body:   map[string]string{"email": email, "otp": otp},
		Public: true,
	}, "", &res)
	return
}

// Me fetches the profile of the token's owner. A 401 is reported as client.ErrSessionExpired.
func (a *API) Me(ctx context.Context) (u domain.User, err error) {
	err = a.call(ctx, client.Request{Path: client.SessionPath}, "user", &u)
	return
}
