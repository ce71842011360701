package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	myErr "electromart/internal/types/errors"
	typesUser "electromart/internal/types/user"

	"github.com/alicebob/miniredis/v2"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

func setupTestRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := zaptest.NewLogger(t).Sugar()

	return NewSessionRepository(client, logger, testSecret, 15*time.Minute), mr
}

// generateJWT подписывает токен так же, как это делает CreateSession
func generateJWT(t *testing.T, secret, sessionID, userID string, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":      "user@example.com",
		"id":         userID,
		"role":       typesUser.RoleUser,
		"iat":        time.Now().Unix(),
		"exp":        exp.Unix(),
		"session_id": sessionID,
	})

	tokenStr, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return tokenStr
}

func TestCreateSession(t *testing.T) {
	repo, mr := setupTestRepo(t)

	w := httptest.NewRecorder()
	sess, err := repo.CreateSession(context.Background(), w, "user-id", "user@example.com", typesUser.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, "user-id", sess.UserID)
	assert.Equal(t, typesUser.RoleUser, sess.Role)
	assert.True(t, sess.EndTime.After(sess.StartTime))

	// В ответе JSON с токеном
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// Сессия лежит в Redis под своим ID
	assert.True(t, mr.Exists(sess.ID))
}

func TestCheckSession(t *testing.T) {
	repo, _ := setupTestRepo(t)

	w := httptest.NewRecorder()
	created, err := repo.CreateSession(context.Background(), w, "user-id", "user@example.com", typesUser.RoleAdmin)
	require.NoError(t, err)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+resp.Token)

	sess, err := repo.CheckSession(r)
	require.NoError(t, err)

	assert.Equal(t, created.ID, sess.ID)
	assert.Equal(t, "user-id", sess.UserID)
	// Роль переживает круг токен -> Redis -> сессия
	assert.Equal(t, typesUser.RoleAdmin, sess.Role)
}

func TestCheckSession_NoHeader(t *testing.T) {
	repo, _ := setupTestRepo(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := repo.CheckSession(r)
	assert.ErrorIs(t, err, myErr.ErrNoAuth)
}

func TestCheckSession_NotBearer(t *testing.T) {
	repo, _ := setupTestRepo(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, err := repo.CheckSession(r)
	assert.ErrorIs(t, err, myErr.ErrNoAuth)
}

func TestCheckSession_InvalidToken(t *testing.T) {
	repo, _ := setupTestRepo(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")

	_, err := repo.CheckSession(r)
	assert.ErrorIs(t, err, myErr.ErrNoAuth)
}

func TestCheckSession_WrongSecret(t *testing.T) {
	repo, _ := setupTestRepo(t)

	tokenStr := generateJWT(t, "other-secret", "sess-id", "user-id", time.Now().Add(time.Hour))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tokenStr)

	_, err := repo.CheckSession(r)
	assert.ErrorIs(t, err, myErr.ErrNoAuth)
}

func TestCheckSession_SessionMissingInRedis(t *testing.T) {
	repo, _ := setupTestRepo(t)

	tokenStr := generateJWT(t, testSecret, "ghost-session", "user-id", time.Now().Add(time.Hour))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tokenStr)

	_, err := repo.CheckSession(r)
	assert.ErrorIs(t, err, myErr.ErrSessionNotFound)
}

func TestCheckSession_Expired(t *testing.T) {
	repo, mr := setupTestRepo(t)

	// Кладем в Redis сессию, у которой срок уже вышел
	expired := &Session{
		ID:        "expired-session",
		UserID:    "user-id",
		Role:      typesUser.RoleUser,
		StartTime: time.Now().Add(-2 * time.Hour),
		EndTime:   time.Now().Add(-time.Hour),
	}
	data, err := json.Marshal(expired)
	require.NoError(t, err)
	require.NoError(t, mr.Set(expired.ID, string(data)))

	// Токен сам по себе еще действителен
	tokenStr := generateJWT(t, testSecret, expired.ID, "user-id", time.Now().Add(time.Hour))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tokenStr)

	_, err = repo.CheckSession(r)
	assert.ErrorIs(t, err, myErr.ErrSessionIsExpired)

	// Протухшая сессия удалена из Redis
	assert.False(t, mr.Exists(expired.ID))
}

func TestExtendSession(t *testing.T) {
	repo, mr := setupTestRepo(t)

	w := httptest.NewRecorder()
	created, err := repo.CreateSession(context.Background(), w, "user-id", "user@example.com", typesUser.RoleUser)
	require.NoError(t, err)

	require.NoError(t, repo.ExtendSession(context.Background(), created.ID))

	data, err := mr.Get(created.ID)
	require.NoError(t, err)

	var stored Session
	require.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.True(t, stored.EndTime.After(created.EndTime) || stored.EndTime.Equal(created.EndTime))
}

func TestExtendSession_NotFound(t *testing.T) {
	repo, _ := setupTestRepo(t)

	err := repo.ExtendSession(context.Background(), "missing-session")
	assert.ErrorIs(t, err, myErr.ErrSessionNotFound)
}
