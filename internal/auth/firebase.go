package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"quranstudy/internal/common"
	"quranstudy/internal/logging"
)

// DefaultEndpoint is the Identity Toolkit REST endpoint. Tests point
// the provider at a local server instead.
const DefaultEndpoint = "https://identitytoolkit.googleapis.com"

// FirebaseProvider implements Provider against the Firebase Identity
// Toolkit REST API (email/password accounts).
type FirebaseProvider struct {
	apiKey   string
	endpoint string
	hc       *http.Client
	log      logging.Logger

	mu        sync.Mutex
	current   *Identity
	idToken   string
	expiry    time.Time
	callbacks []func(*Identity)
}

func NewFirebaseProvider(apiKey, endpoint string, log logging.Logger) *FirebaseProvider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &FirebaseProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		hc:       &http.Client{Timeout: 15 * time.Second},
		log:      log,
	}
}

type sessionResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
	RefreshTok  string `json:"refreshToken"`
	ExpiresIn   string `json:"expiresIn"`
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	if err := validateSignUp(email, password, displayName); err != nil {
		return nil, err
	}

	var resp sessionResponse
	err := p.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	p.setSession(ctx, resp.IDToken)

	// The account exists without a name yet; attach it in a second
	// call, the way the browser SDK's updateProfile did.
	var upd sessionResponse
	err = p.post(ctx, "accounts:update", map[string]any{
		"idToken":           resp.IDToken,
		"displayName":       displayName,
		"returnSecureToken": false,
	}, &upd)
	if err != nil {
		p.log.Warn(ctx, "display name not set at signup", "error", err)
	}

	id := &Identity{UID: resp.LocalID, DisplayName: displayName, Email: resp.Email}
	p.setIdentity(id)
	return id, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	if err := validateSignIn(email, password); err != nil {
		return nil, err
	}

	var resp sessionResponse
	err := p.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	p.setSession(ctx, resp.IDToken)

	id := &Identity{UID: resp.LocalID, DisplayName: resp.DisplayName, Email: resp.Email}
	p.setIdentity(id)
	return id, nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.idToken = ""
	p.expiry = time.Time{}
	p.mu.Unlock()

	p.setIdentity(nil)
	return nil
}

func (p *FirebaseProvider) ResetPassword(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	return p.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, &struct{}{})
}

// UpdateDisplayName changes the profile name of the signed-in user.
// This is not an identity change, so registered callbacks do not fire.
func (p *FirebaseProvider) UpdateDisplayName(ctx context.Context, displayName string) (*Identity, error) {
	if displayName == "" {
		return nil, fmt.Errorf("%w: please enter a display name", common.ErrValidation)
	}

	p.mu.Lock()
	token := p.idToken
	cur := p.current
	p.mu.Unlock()

	if token == "" || cur == nil {
		return nil, fmt.Errorf("%w: not signed in", common.ErrAuth)
	}

	err := p.post(ctx, "accounts:update", map[string]any{
		"idToken":           token,
		"displayName":       displayName,
		"returnSecureToken": false,
	}, &struct{}{})
	if err != nil {
		return nil, err
	}

	id := &Identity{UID: cur.UID, DisplayName: displayName, Email: cur.Email}
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
	return id, nil
}

func (p *FirebaseProvider) Current() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *FirebaseProvider) OnChange(fn func(*Identity)) {
	p.mu.Lock()
	p.callbacks = append(p.callbacks, fn)
	cur := p.current
	p.mu.Unlock()

	fn(cur)
}

func (p *FirebaseProvider) setIdentity(id *Identity) {
	p.mu.Lock()
	p.current = id
	callbacks := make([]func(*Identity), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(id)
	}
}

// setSession records the ID token and its expiry. The token is a JWT;
// its exp claim tells us when the session lapses.
//
// TODO: exchange the refresh token at securetoken.googleapis.com before
// expiry instead of letting long sessions lapse.
func (p *FirebaseProvider) setSession(ctx context.Context, idToken string) {
	exp, err := tokenExpiry(idToken)
	if err != nil {
		p.log.Warn(ctx, "could not read token expiry", "error", err)
	}

	p.mu.Lock()
	p.idToken = idToken
	p.expiry = exp
	p.mu.Unlock()
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) post(ctx context.Context, action string, body any, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: no auth API key configured", common.ErrAuth)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", action, err)
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", p.endpoint, action, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrAuth, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			// Surfaced verbatim: messages like EMAIL_EXISTS or
			// INVALID_PASSWORD are what the UI shows.
			return fmt.Errorf("%w: %s", common.ErrAuth, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: %s returned status %d", common.ErrAuth, action, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", action, err)
	}
	return nil
}
