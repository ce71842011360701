package middleware

import (
	"context"
	"net/http"

	"electromart/internal/session"
	myErr "electromart/internal/types/errors"
	typesUser "electromart/internal/types/user"

	"go.uber.org/zap"
)

type SessKey string

var sessKey SessKey = "sessionKey"

func Auth(sm session.SessionRepo, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Проверка сессии пользователя
			sess, err := sm.CheckSession(r)
			if err != nil {
				myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, logger)
				return
			}

			// Активный пользователь продлевает сессию. Неуспех не фатален
			if err := sm.ExtendSession(r.Context(), sess.ID); err != nil {
				logger.Warnf("failed to extend session %s: %v", sess.ID, err)
			}

			// Добавляем сессию в контекст и передаем дальше
			ctx := ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin пропускает только пользователей с ролью admin.
// Вешается поверх Auth - сессия уже лежит в контексте
func Admin(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSessionFromContext(r.Context())
			if !ok || sess.Role != typesUser.RoleAdmin {
				myErr.SendErrorTo(w, myErr.ErrForbidden, http.StatusForbidden, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithSession(ctx context.Context, s *session.Session) context.Context {
	// создаем новый контекст с нашим ключом и сессией
	return context.WithValue(ctx, sessKey, s)
}

func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessKey).(*session.Session)
	return sess, ok
}
