package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quranstudy/internal/common"
	"quranstudy/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func makeIDToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *FirebaseProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFirebaseProvider("test-key", srv.URL, testLogger())
}

func TestSignUp_ValidationBeforeNetwork(t *testing.T) {
	called := false
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := p.SignUp(context.Background(), "user@example.com", "short", "Name")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = p.SignUp(context.Background(), "not-an-email", "longenough", "Name")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = p.SignUp(context.Background(), "user@example.com", "longenough", "  ")
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.False(t, called, "validation failures must not reach the network")
}

func TestSignIn_Success(t *testing.T) {
	idToken := makeIDToken(t, time.Now().Add(time.Hour))
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "accounts:signInWithPassword"))
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"localId":     "u1",
			"email":       "user@example.com",
			"displayName": "Aisha",
			"idToken":     idToken,
		})
	})

	var observed []*Identity
	p.OnChange(func(id *Identity) { observed = append(observed, id) })

	id, err := p.SignIn(context.Background(), "user@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UID)
	assert.Equal(t, "Aisha", id.DisplayName)
	assert.Equal(t, id, p.Current())

	// nil at registration (anonymous), then the signed-in identity.
	require.Len(t, observed, 2)
	assert.Nil(t, observed[0])
	assert.Equal(t, id, observed[1])
}

func TestSignIn_SurfacesProviderMessage(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "INVALID_PASSWORD"},
		})
	})

	_, err := p.SignIn(context.Background(), "user@example.com", "wrongpass")
	require.ErrorIs(t, err, common.ErrAuth)
	assert.Contains(t, err.Error(), "INVALID_PASSWORD")
	assert.Nil(t, p.Current())
}

func TestSignOut_NotifiesNil(t *testing.T) {
	idToken := makeIDToken(t, time.Now().Add(time.Hour))
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"localId": "u1", "email": "u@e.com", "idToken": idToken,
		})
	})

	_, err := p.SignIn(context.Background(), "u@e.com", "secret123")
	require.NoError(t, err)

	var last *Identity
	gotCall := false
	p.OnChange(func(id *Identity) { last = id; gotCall = true })
	require.True(t, gotCall)
	require.NotNil(t, last)

	require.NoError(t, p.SignOut(context.Background()))
	assert.Nil(t, last)
	assert.Nil(t, p.Current())
}

func TestResetPassword_SendsOobCode(t *testing.T) {
	var gotType string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "accounts:sendOobCode"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotType, _ = body["requestType"].(string)
		json.NewEncoder(w).Encode(map[string]any{})
	})

	require.NoError(t, p.ResetPassword(context.Background(), "user@example.com"))
	assert.Equal(t, "PASSWORD_RESET", gotType)
}

func TestUpdateDisplayName_RequiresSession(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	})

	_, err := p.UpdateDisplayName(context.Background(), "New Name")
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	got, err := tokenExpiry(makeIDToken(t, exp))
	require.NoError(t, err)
	assert.WithinDuration(t, exp, got, time.Second)

	_, err = tokenExpiry("not.a.jwt")
	assert.Error(t, err)
}
