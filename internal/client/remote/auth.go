package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/obexhq/obex/internal/client/models"
)

// tokenResponse is the provider's session payload. Depending on the
// endpoint, expiry arrives as expires_at (unix seconds), expires_in
// (seconds), or only inside the access token's exp claim.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// authError is the provider's structured failure payload.
type authError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

// SignUp registers a new account. Providers configured to require email
// confirmation return a user without tokens; that surfaces as
// ErrEmailNotConfirmed so the caller can tell the user to check their inbox.
func (c *HTTPClient) SignUp(ctx context.Context, email, password string) (*models.AuthSession, error) {
	var resp tokenResponse
	if err := c.doAuth(ctx, "/signup", map[string]string{"email": email, "password": password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, ErrEmailNotConfirmed
	}

	session := c.sessionFromToken(resp, email)
	c.setSessionAndEmit(session, AuthEventSignedIn)
	return session, nil
}

// SignIn exchanges email/password credentials for a session.
func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*models.AuthSession, error) {
	var resp tokenResponse
	if err := c.doAuth(ctx, "/token?grant_type=password", map[string]string{"email": email, "password": password}, &resp); err != nil {
		return nil, err
	}

	session := c.sessionFromToken(resp, email)
	c.setSessionAndEmit(session, AuthEventSignedIn)
	return session, nil
}

// RefreshSession replaces the token pair using the refresh token.
func (c *HTTPClient) RefreshSession(ctx context.Context) (*models.AuthSession, error) {
	current := c.Session()
	if current == nil || current.RefreshToken == "" {
		return nil, ErrInvalidCredentials
	}

	var resp tokenResponse
	if err := c.doAuth(ctx, "/token?grant_type=refresh_token", map[string]string{"refresh_token": current.RefreshToken}, &resp); err != nil {
		return nil, err
	}

	session := c.sessionFromToken(resp, current.Email)
	if session.UserID == "" {
		session.UserID = current.UserID
	}
	c.setSessionAndEmit(session, AuthEventTokenRefreshed)
	return session, nil
}

// SignOut revokes the session server-side and always drops the in-memory
// session, even when the revocation call fails.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	current := c.Session()
	var err error
	if current != nil {
		status, _, doErr := c.doJSON(ctx, http.MethodPost, c.baseURL+authBasePath+"/logout", bearer(current.AccessToken), nil, nil)
		if doErr != nil {
			err = doErr
		} else if status >= 300 && status != http.StatusUnauthorized {
			err = fmt.Errorf("%w: logout status %d", ErrTransport, status)
		}
	}
	c.setSessionAndEmit(nil, AuthEventSignedOut)
	return err
}

// ResetPassword asks the provider to send a password-recovery email.
func (c *HTTPClient) ResetPassword(ctx context.Context, email string) error {
	return c.doAuth(ctx, "/recover", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) doAuth(ctx context.Context, path string, body, out any) error {
	status, data, err := c.doJSON(ctx, http.MethodPost, c.baseURL+authBasePath+path, nil, body, out)
	if err != nil {
		return err
	}
	if status >= 300 {
		return c.mapAuthError(status, data)
	}
	return nil
}

// mapAuthError classifies the provider's failure payload into the closed
// set of sentinel errors. Anything unmapped degrades to ErrTransport so no
// raw provider text leaks past the service layer.
func (c *HTTPClient) mapAuthError(status int, data []byte) error {
	var ae authError
	_ = json.Unmarshal(data, &ae)

	switch ae.ErrorCode {
	case "invalid_credentials":
		return ErrInvalidCredentials
	case "email_not_confirmed":
		return ErrEmailNotConfirmed
	case "weak_password":
		return ErrWeakPassword
	case "user_already_exists", "email_exists":
		return ErrAlreadyRegistered
	case "over_request_rate_limit":
		return ErrRateLimited
	}
	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return ErrInvalidCredentials
	}
	return fmt.Errorf("%w: auth status %d", ErrTransport, status)
}

// sessionFromToken builds an AuthSession, recovering expiry and user id
// from the access token's claims when the response omits them.
func (c *HTTPClient) sessionFromToken(resp tokenResponse, email string) *models.AuthSession {
	s := &models.AuthSession{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
	}
	if s.Email == "" {
		s.Email = email
	}

	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		s.ExpiresAt = c.now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	if s.ExpiresAt.IsZero() || s.UserID == "" {
		claims := jwt.MapClaims{}
		parser := jwt.NewParser()
		if _, _, err := parser.ParseUnverified(resp.AccessToken, claims); err == nil {
			if s.ExpiresAt.IsZero() {
				if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
					s.ExpiresAt = exp.Time.UTC()
				}
			}
			if s.UserID == "" {
				if sub, err := claims.GetSubject(); err == nil {
					s.UserID = sub
				}
			}
		}
	}
	return s
}
