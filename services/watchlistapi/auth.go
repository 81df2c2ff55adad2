package watchlistapi

import (
	"context"
	"net/http"

	"cinelist/models"
)

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) models.AuthEnvelope {
	return c.authenticate(ctx, "/auth/login", username, password, "login")
}

// Register creates an account and returns a session token for it.
func (c *Client) Register(ctx context.Context, username, password string) models.AuthEnvelope {
	return c.authenticate(ctx, "/auth/register", username, password, "register")
}

func (c *Client) authenticate(ctx context.Context, path, username, password, op string) models.AuthEnvelope {
	var resp models.AuthEnvelope
	body := models.Credentials{Username: username, Password: password}
	if err := c.send(ctx, "", http.MethodPost, path, body, &resp); err != nil {
		c.logFailure(op, err)
		return models.AuthEnvelope{Success: false, Error: err.Error()}
	}
	if !resp.Success || resp.Token == "" {
		return models.AuthEnvelope{Success: false, Error: missingPayload(resp.Error, "token")}
	}
	return resp
}

// Logout revokes the session behind token.
func (c *Client) Logout(ctx context.Context, token string) models.MessageEnvelope {
	var resp models.MessageEnvelope
	if err := c.do(ctx, token, http.MethodPost, "/auth/logout", nil, &resp); err != nil {
		c.logFailure("logout", err)
		return models.MessageEnvelope{Success: false, Error: err.Error()}
	}
	return resp
}
