package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"electromart/internal/contextutil"
	elasticService "electromart/internal/elastic_search"
	"electromart/internal/kafka"
	"electromart/internal/product"
	myErr "electromart/internal/types/errors"
	types "electromart/internal/types/product"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProductHandler ручки каталога товаров
type ProductHandler struct {
	Logger        *zap.SugaredLogger
	ProductRepo   product.ProductRepo
	Elastic       *elasticService.ElasticService
	EventProducer kafka.EventProducer
}

func NewProductHandler(
	log *zap.SugaredLogger,
	pr product.ProductRepo,
	es *elasticService.ElasticService,
	ep kafka.EventProducer,
) *ProductHandler {
	return &ProductHandler{
		Logger:        log,
		ProductRepo:   pr,
		Elastic:       es,
		EventProducer: ep,
	}
}

// List - GET /products?q=<filter>
// Без фильтра отдает весь каталог. С фильтром сперва идет в полнотекстовый
// поиск, при недоступном ES откатывается на поиск по подстроке в базе
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var products []product.Product
	var err error

	if query != "" && h.Elastic != nil {
		products, err = h.searchViaElastic(r, query)
		if err != nil {
			h.Logger.Warnf("elastic search failed, falling back to db: %v", err)
			products, err = h.ProductRepo.List(query)
		}
	} else {
		products, err = h.ProductRepo.List(query)
	}

	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	if products == nil {
		products = []product.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(products); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}

func (h *ProductHandler) searchViaElastic(r *http.Request, query string) ([]product.Product, error) {
	docs, err := h.Elastic.SearchByTitle(r.Context(), query)
	if err != nil {
		return nil, err
	}

	products := make([]product.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := h.ProductRepo.GetByID(doc.ID)
		if err != nil {
			// Индекс может отставать от базы - пропускаем удаленные товары
			h.Logger.Warnf("product %s from index not found in db: %v", doc.ID, err)
			continue
		}
		products = append(products, *p)
	}

	return products, nil
}

// GetByID - GET /products/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	p, err := h.ProductRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	// Просмотр карточки товара - событие для аналитики
	if userID, ok := contextutil.GetUserIDFromContext(r.Context()); ok {
		event := kafka.Event{
			UserID:     userID,
			Type:       kafka.EventTypeView,
			ProductIDs: []string{id},
			Timestamp:  time.Now(),
		}
		if err := h.EventProducer.SendEvent(r.Context(), event); err != nil {
			h.Logger.Warnf("failed to send view event: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}

// Create - POST /products (только admin)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form types.CreateProduct
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	if form.Title == "" || form.Price < 0 || form.Quantity < 0 {
		myErr.SendErrorTo(w, errors.New("title is required, price and quantity must be non-negative"),
			http.StatusBadRequest, h.Logger)
		return
	}

	p, err := h.ProductRepo.Create(form)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}

	h.Logger.Infof("created product %s", p.ID)
}

// Delete - DELETE /products/{id} (только admin)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	err := h.ProductRepo.Delete(id)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.Logger.Infof("deleted product %s", id)
}

// UpdateQuantity - PUT /products/{id}/quantity (только admin)
func (h *ProductHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	var form types.ChangeQuantity
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}
	if form.Quantity < 0 {
		myErr.SendErrorTo(w, errors.New("quantity must be non-negative"), http.StatusBadRequest, h.Logger)
		return
	}

	err := h.ProductRepo.SetStock(id, form.Quantity)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.WriteHeader(http.StatusOK)
	h.Logger.Infof("updated quantity for product %s to %d", id, form.Quantity)
}

// Buy - POST /products/{id}/buy
// Покупка одной единицы прямо с карточки товара, мимо корзины
func (h *ProductHandler) Buy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if _, err := uuid.Parse(id); err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	newQuantity, err := h.ProductRepo.Buy(id)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		if errors.Is(err, myErr.ErrOutOfStock) {
			myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	if userID, ok := contextutil.GetUserIDFromContext(r.Context()); ok {
		event := kafka.Event{
			UserID:     userID,
			Type:       kafka.EventTypePurchase,
			ProductIDs: []string{id},
			Timestamp:  time.Now(),
		}
		if err := h.EventProducer.SendEvent(r.Context(), event); err != nil {
			h.Logger.Warnf("failed to send purchase event on Buy: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "success",
		"new_quantity": newQuantity,
	})
}
