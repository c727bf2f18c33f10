package cli

import (
	"context"

	"district-digest/internal/domain/entity"
)

// Login flow messages.
const (
	msgLoginFailed = "Login failed"
	msgLoginError  = "An error occurred"
	dashboardPath  = "/dashboard"
)

// AuthClient is the API surface the login controller depends on.
type AuthClient interface {
	Login(ctx context.Context, creds entity.Credentials) (*entity.LoginResult, error)
}

// LoginController submits credentials and routes the session on success.
type LoginController struct {
	client AuthClient
	view   View
}

// NewLoginController creates a login controller rendering into view.
func NewLoginController(client AuthClient, view View) *LoginController {
	return &LoginController{client: client, view: view}
}

// Login submits the credentials. Success navigates to the dashboard;
// rejection shows the server's message or a generic failure; any transport
// or decode error shows a generic error.
func (c *LoginController) Login(ctx context.Context, username, password string) {
	result, err := c.client.Login(ctx, entity.Credentials{Username: username, Password: password})
	if err != nil {
		c.view.SetError(msgLoginError)
		return
	}

	if result.Success {
		c.view.Navigate(dashboardPath)
		return
	}

	if result.Message != "" {
		c.view.SetError(result.Message)
	} else {
		c.view.SetError(msgLoginFailed)
	}
}
