package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"electromart/internal/mocks"
	"electromart/internal/session"
	myErr "electromart/internal/types/errors"
	typesUser "electromart/internal/types/user"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	sessionRepo := mocks.NewMockSessionRepo(ctrl)
	logger := zap.NewNop().Sugar()

	sess := &session.Session{ID: "sess-id", UserID: "user-id", Role: typesUser.RoleUser}
	sessionRepo.EXPECT().CheckSession(gomock.Any()).Return(sess, nil)
	sessionRepo.EXPECT().ExtendSession(gomock.Any(), "sess-id").Return(nil)

	var gotSession *session.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession, _ = GetSessionFromContext(r.Context())
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	Auth(sessionRepo, logger)(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sess, gotSession)
}

func TestAuth_NoSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	sessionRepo := mocks.NewMockSessionRepo(ctrl)
	logger := zap.NewNop().Sugar()

	sessionRepo.EXPECT().CheckSession(gomock.Any()).Return(nil, myErr.ErrNoAuth)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next не должен вызываться без сессии")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	Auth(sessionRepo, logger)(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Session
		wantStatus int
	}{
		{
			name:       "администратор проходит",
			sess:       &session.Session{ID: "s1", UserID: "admin-id", Role: typesUser.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "обычный пользователь получает 403",
			sess:       &session.Session{ID: "s2", UserID: "user-id", Role: typesUser.RoleUser},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "без сессии в контексте 403",
			sess:       nil,
			wantStatus: http.StatusForbidden,
		},
	}

	logger := zap.NewNop().Sugar()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/admin/products", nil)
			if tt.sess != nil {
				r = r.WithContext(ContextWithSession(r.Context(), tt.sess))
			}

			Admin(logger)(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
