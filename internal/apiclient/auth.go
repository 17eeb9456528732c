package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"catalogconsole/internal/apperr"
	"catalogconsole/internal/domain"
	"catalogconsole/internal/validate"
)

type Auth struct {
	client *Client
}

func (c *Client) Auth() *Auth { return &Auth{client: c} }

// Login posts the credentials and returns the user together with whatever the
// API handed back to authenticate later calls: Set-Cookie values and a token field.
func (a *Auth) Login(ctx context.Context, payload domain.LoginPayload) (*domain.User, Credentials, error) {
	res, err := a.client.do(ctx, http.MethodPost, "/auth/login", payload)
	if err != nil {
		return nil, Credentials{}, err
	}
	user, err := decodeUser(res.body)
	if err != nil {
		return nil, Credentials{}, err
	}
	creds := Credentials{Token: tokenOf(res.body)}.merge(res.cookies)
	return user, creds, nil
}

// Me is the who-am-i probe used to hydrate a session.
func (a *Auth) Me(ctx context.Context) (*domain.User, error) {
	res, err := a.client.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(res.body)
}

func (a *Auth) Logout(ctx context.Context) error {
	_, err := a.client.do(ctx, http.MethodPost, "/auth/logout", nil)
	return err
}

func decodeUser(body []byte) (*domain.User, error) {
	var u domain.User
	if err := decodeEnvelope(body, &u); err != nil {
		return nil, err
	}
	// some deployments nest the user one level deeper as {"data":{"user":{...}}}
	if u.ID == "" {
		var nested struct {
			User *domain.User `json:"user"`
		}
		if err := decodeEnvelope(body, &nested); err == nil && nested.User != nil {
			u = *nested.User
		}
	}
	if err := validate.Struct(&u); err != nil {
		return nil, malformed(err)
	}
	return &u, nil
}

func tokenOf(body []byte) string {
	var top struct {
		Token string `json:"token"`
		Data  struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &top); err != nil {
		return ""
	}
	if top.Token != "" {
		return top.Token
	}
	return top.Data.Token
}

func malformed(err error) error {
	return apperr.Wrap(apperr.CodeUpstream, err, "Unexpected response from the catalog API")
}
