/*
Package webtoken
Bearer token provider for {json:api} backends that hand out tokens in exchange
for credentials.

Usage:

    tokens := webtoken.New(
        "http://localhost:8080/v1/authentication",
        map[string]interface{}{"username": "admin", "password": "admin"},
        &jsonapi.Connection{},
    )
    err := tokens.Authenticate(ctx)
    fmt.Println(tokens.Token())

A *WebToken satisfies model.TokenSource and is meant to be shared by every
model that talks to the same backend. Authenticate before issuing requests
that need the token; models read whatever token is current when they build
their headers.
*/
package webtoken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
)

type Data struct {
	Token string `json:"token"`
}

type WebToken struct {
	URL        string
	Attributes map[string]interface{}
	API        *jsonapi.Connection
	Logger     hclog.Logger

	mu   sync.RWMutex
	data Data
}

func New(
	url string, attributes map[string]interface{}, api *jsonapi.Connection,
) *WebToken {
	return &WebToken{URL: url, Attributes: attributes, API: api}
}

// Data returns a snapshot of the provider's state
func (w *WebToken) Data() Data {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data
}

// Token returns the current token, "" before a successful Authenticate
func (w *WebToken) Token() string {
	return w.Data().Token
}

// SetToken installs a token obtained earlier, eg. one read from disk
func (w *WebToken) SetToken(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data.Token = token
}

/*
Authenticate
POST the credentials in Attributes to URL and keep the returned token. On
failure the current token is left untouched; error responses from the server
are returned as *jsonapi.Error.
*/
func (w *WebToken) Authenticate(ctx context.Context) error {
	if w.URL == "" {
		return errors.New("webtoken: no authentication url configured")
	}
	attributes := w.Attributes
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	payload, err := json.Marshal(attributes)
	if err != nil {
		return err
	}

	api := w.API
	if api == nil {
		api = &jsonapi.Connection{}
	}
	body, err := api.Request(ctx, "POST", w.URL, map[string]string{
		"Accept":       jsonapi.ContentType,
		"Content-Type": jsonapi.ContentType,
	}, payload)
	if err != nil {
		w.logger().Warn("authentication failed", "url", w.URL, "error", err)
		return err
	}

	var response jsonapi.TokenPayload
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("could not parse authentication response: %w", err)
	}
	if response.Data.Token == "" {
		return errors.New("authentication response carried no token")
	}

	w.SetToken(response.Data.Token)
	w.logger().Debug("authenticated", "url", w.URL)
	return nil
}

/*
ExpiresAt
Reads the 'exp' claim when the token is a JWT. The signature is not verified;
this is only meant to tell whether re-authenticating is worthwhile.
*/
func (w *WebToken) ExpiresAt() (time.Time, bool) {
	token := w.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, false
	}
	expiration, err := claims.GetExpirationTime()
	if err != nil || expiration == nil {
		return time.Time{}, false
	}
	return expiration.Time, true
}

// Expired is true for JWT tokens past their 'exp' claim. Opaque tokens never
// expire as far as the client can tell.
func (w *WebToken) Expired() bool {
	expiresAt, ok := w.ExpiresAt()
	return ok && !time.Now().Before(expiresAt)
}

func (w *WebToken) logger() hclog.Logger {
	if w.Logger == nil {
		return hclog.NewNullLogger()
	}
	return w.Logger.Named("webtoken")
}
