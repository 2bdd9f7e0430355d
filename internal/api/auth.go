package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token. It does not store the token;
// callers hand the response to session.Begin.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body, err := json.Marshal(loginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, err
	}

	resp, reqID, err := c.do(ctx, request{
		op:          OpLogin,
		method:      http.MethodPost,
		url:         c.endpoint("auth", "login"),
		body:        bytes.NewReader(body),
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	lr, err := decodeLogin(resp.Body)
	if err != nil {
		return nil, err
	}
	if lr.Token == "" {
		return nil, newRemoteError(OpLogin, resp.StatusCode, "", reqID)
	}
	if lr.User.Email == "" {
		lr.User.Email = strings.TrimSpace(email)
	}
	return lr, nil
}
