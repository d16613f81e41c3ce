package authgw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/document"
)

func setupDocs(t *testing.T) document.Store {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docs, err := document.NewStore(db)
	require.NoError(t, err)
	return docs
}

func signedToken(t *testing.T, sub, email string, exp time.Time) string {
	claims := jwt.MapClaims{"sub": sub, "email": email, "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSignIn_Success(t *testing.T) {
	token := signedToken(t, "u1", "a@b.co", time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, "anon-key", r.Header.Get("apikey"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": token,
			"expires_in":   3600,
			"user":         map[string]string{"id": "u1", "email": "a@b.co"},
		})
	}))
	defer srv.Close()

	docs := setupDocs(t)
	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "anon-key"}, docs)
	require.NoError(t, err)

	var events []*domain.Session
	unsub := client.Subscribe(func(s *domain.Session) { events = append(events, s) })
	defer unsub()

	sess, err := client.SignIn(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "a@b.co", sess.Email)

	require.Len(t, events, 1)
	assert.Equal(t, sess, events[0])

	// The session was cached for the next process start.
	cached, err := docs.Load(context.Background(), "session", nil)
	require.NoError(t, err)
	require.NotNil(t, cached)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "invalid_grant", "error_description": "Invalid login credentials",
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, setupDocs(t))
	require.NoError(t, err)

	_, err = client.SignIn(context.Background(), "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_EmailNotConfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error_code": "email_not_confirmed", "msg": "Email not confirmed",
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, setupDocs(t))
	require.NoError(t, err)

	_, err = client.SignIn(context.Background(), "a@b.co", "pw")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
}

func TestSignOut_ClearsCacheAndNotifies(t *testing.T) {
	token := signedToken(t, "u1", "a@b.co", time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": token,
				"expires_in":   3600,
				"user":         map[string]string{"id": "u1", "email": "a@b.co"},
			})
		case "/logout":
			require.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	docs := setupDocs(t)
	client, err := NewClient(Config{BaseURL: srv.URL}, docs)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.SignIn(ctx, "a@b.co", "pw")
	require.NoError(t, err)

	var last *domain.Session
	fired := 0
	unsub := client.Subscribe(func(s *domain.Session) { last = s; fired++ })
	defer unsub()

	require.NoError(t, client.SignOut(ctx))
	assert.Equal(t, 1, fired)
	assert.Nil(t, last)

	sess, err := client.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestCurrentSession_RestoredFromCache(t *testing.T) {
	docs := setupDocs(t)
	token := signedToken(t, "u7", "cached@b.co", time.Now().Add(time.Hour))

	cached, _ := json.Marshal(domain.Session{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	require.NoError(t, docs.Save(context.Background(), "session", cached))

	client, err := NewClient(Config{BaseURL: "http://unused.test"}, docs)
	require.NoError(t, err)

	sess, err := client.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "u7", sess.UserID, "subject comes from the token claims")
	assert.Equal(t, "cached@b.co", sess.Email)
}

func TestCurrentSession_ExpiredCacheIsNoSession(t *testing.T) {
	docs := setupDocs(t)
	cached, _ := json.Marshal(domain.Session{
		AccessToken: "whatever",
		ExpiresAt:   time.Now().Add(-time.Minute),
	})
	require.NoError(t, docs.Save(context.Background(), "session", cached))

	client, err := NewClient(Config{BaseURL: "http://unused.test"}, docs)
	require.NoError(t, err)

	sess, err := client.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://unused.test"}, setupDocs(t))
	require.NoError(t, err)

	fired := 0
	unsub := client.Subscribe(func(*domain.Session) { fired++ })
	client.notify(nil)
	unsub()
	client.notify(nil)

	assert.Equal(t, 1, fired)
}
