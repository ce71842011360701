package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"electromart/internal/checkout"
	"electromart/internal/contextutil"
	"electromart/internal/middleware"
	myErr "electromart/internal/types/errors"

	"go.uber.org/zap"
)

// CheckoutHandler ручка оформления заказа
type CheckoutHandler struct {
	Logger     *zap.SugaredLogger
	Settlement *checkout.Settlement
}

func NewCheckoutHandler(log *zap.SugaredLogger, s *checkout.Settlement) *CheckoutHandler {
	return &CheckoutHandler{
		Logger:     log,
		Settlement: s,
	}
}

// Submit - POST /checkout
// Принимает форму доставки и оплаты, проводит заказ по корзине пользователя
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	result, err := h.Settlement.Settle(r.Context(), userID, form)
	if err != nil {
		if errors.Is(err, myErr.ErrEmptyCart) {
			myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
			return
		}
		if errors.Is(err, myErr.ErrCheckoutInProgress) {
			myErr.SendErrorTo(w, err, http.StatusConflict, h.Logger)
			return
		}

		// Транспортная ошибка: склад недоступен, пользователю - общее
		// сообщение с предложением повторить, без автоматических ретраев
		myErr.SendErrorTo(
			w,
			errors.New("there was an error processing your order, please try again"),
			http.StatusBadGateway,
			h.Logger,
		)
		return
	}

	middleware.ObserveCheckout(string(result.Status))

	status := http.StatusOK
	switch result.Status {
	case checkout.StatusValidating:
		// Форма не прошла проверку полей
		status = http.StatusUnprocessableEntity
	case checkout.StatusAborted:
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}
