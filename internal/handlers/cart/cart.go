package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"electromart/internal/cart"
	"electromart/internal/contextutil"
	"electromart/internal/kafka"
	"electromart/internal/product"
	myErr "electromart/internal/types/errors"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CartHandler ручки корзины
type CartHandler struct {
	Logger        *zap.SugaredLogger
	CartService   *cart.Service
	ProductRepo   product.ProductRepo
	EventProducer kafka.EventProducer
}

func NewCartHandler(
	log *zap.SugaredLogger,
	cs *cart.Service,
	pr product.ProductRepo,
	ep kafka.EventProducer,
) *CartHandler {
	return &CartHandler{
		Logger:        log,
		CartService:   cs,
		ProductRepo:   pr,
		EventProducer: ep,
	}
}

// cartResponse - корзина с производными агрегатами
type cartResponse struct {
	Lines     []cart.Line `json:"lines"`
	ItemCount int         `json:"item_count"`
	Total     float64     `json:"total"`
}

func newCartResponse(c *cart.Cart) cartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartResponse{
		Lines:     lines,
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
	}
}

func (h *CartHandler) writeCart(w http.ResponseWriter, c *cart.Cart) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(newCartResponse(c)); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}

// GetCart - GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	c, err := h.CartService.GetCart(r.Context(), userID)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.writeCart(w, c)
}

type addToCartForm struct {
	ProductID string `json:"product_id"`
}

// AddToCart - POST /cart/items
// Потолок остатка снимается с актуального количества товара в момент добавления
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	var form addToCartForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}
	if _, err := uuid.Parse(form.ProductID); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	p, err := h.ProductRepo.GetByID(form.ProductID)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	if err := h.CartService.AddToCart(r.Context(), userID, *p); err != nil {
		if errors.Is(err, myErr.ErrCheckoutInProgress) {
			myErr.SendErrorTo(w, err, http.StatusConflict, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	// После успешного добавления — отправляем событие "addToCart" в Kafka
	event := kafka.Event{
		UserID:     userID,
		Type:       kafka.EventTypeAddToCart,
		ProductIDs: []string{p.ID},
		Timestamp:  time.Now(),
	}
	if err := h.EventProducer.SendEvent(r.Context(), event); err != nil {
		h.Logger.Warnf("failed to send addToCart event: %v", err)
	}

	w.WriteHeader(http.StatusCreated)
	h.Logger.Infof("added product %s to user %s cart", p.ID, userID)
}

// RemoveFromCart - DELETE /cart/items/{id}
// Повторное удаление той же позиции не является ошибкой
func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	vars := mux.Vars(r)
	productID := vars["id"]
	if _, err := uuid.Parse(productID); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	if err := h.CartService.RemoveFromCart(r.Context(), userID, productID); err != nil {
		if errors.Is(err, myErr.ErrCheckoutInProgress) {
			myErr.SendErrorTo(w, err, http.StatusConflict, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.Logger.Infof("removed product %s from user %s cart", productID, userID)
}

type updateQuantityForm struct {
	Quantity int `json:"quantity"`
}

type updateQuantityResponse struct {
	Quantity int    `json:"quantity"`
	Clamped  bool   `json:"clamped"`
	Message  string `json:"message,omitempty"`
}

// UpdateQuantity - PUT /cart/items/{id}
// Количество меньше 1 удаляет позицию. Запрос выше потолка остатка
// молча срезается до потолка, клиенту возвращается предупреждение
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	vars := mux.Vars(r)
	productID := vars["id"]
	if _, err := uuid.Parse(productID); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	var form updateQuantityForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	effective, clamped, err := h.CartService.UpdateQuantity(r.Context(), userID, productID, form.Quantity)
	if err != nil {
		if errors.Is(err, myErr.ErrCheckoutInProgress) {
			myErr.SendErrorTo(w, err, http.StatusConflict, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	resp := updateQuantityResponse{
		Quantity: effective,
		Clamped:  clamped,
	}
	if clamped {
		resp.Message = fmt.Sprintf("Sorry, only %d units available in stock.", effective)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}

// ClearCart - DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	if err := h.CartService.ClearCart(r.Context(), userID); err != nil {
		if errors.Is(err, myErr.ErrCheckoutInProgress) {
			myErr.SendErrorTo(w, err, http.StatusConflict, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.Logger.Infof("cleared cart for user %s", userID)
}

// Count - GET /cart/count
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	c, err := h.CartService.GetCart(r.Context(), userID)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]int{"count": c.ItemCount()})
}
