package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"pharmaflow/m/domain"
	"pharmaflow/m/internal/billing"
	"pharmaflow/m/internal/inventory"
	"pharmaflow/m/internal/reports"
	"pharmaflow/m/internal/sales"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	ledger   *inventory.Ledger
	carts    *billing.Registry
	recorder *sales.Recorder
	views    *reports.Service
	secret   string
	origins  []string
}

// New constructs a Handler.
func New(ledger *inventory.Ledger, carts *billing.Registry, recorder *sales.Recorder, views *reports.Service, secret string, origins []string) *Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		ledger:   ledger,
		carts:    carts,
		recorder: recorder,
		views:    views,
		secret:   secret,
		origins:  origins,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Post("/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Get("/in-stock", h.listInStock)
			r.Post("/", h.addMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Delete("/{id}", h.removeMedicine)
		})

		pr.Route("/carts", func(r chi.Router) {
			r.Post("/", h.openCart)
			r.Get("/{id}", h.getCart)
			r.Delete("/{id}", h.abandonCart)
			r.Post("/{id}/items", h.addCartItem)
			r.Delete("/{id}/items", h.clearCart)
			r.Delete("/{id}/items/{medicineID}", h.removeCartItem)
			r.Put("/{id}/customer", h.setCustomer)
			r.Post("/{id}/checkout", h.checkout)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Get("/", h.salesHistory)
			r.Get("/{id}", h.getSale)
			r.Get("/{id}/invoice", h.printInvoice)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", h.dashboard)
			r.Get("/low-stock", h.lowStock)
			r.Get("/expiring", h.expiring)
			r.Get("/expired", h.expired)
			r.Get("/revenue", h.revenue)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login gate

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login admits any non-empty email and password; there are no accounts to
// check against.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.secret))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token, "email": email})
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Medicine handlers

type medicineRequest struct {
	Name       string           `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   *int             `json:"quantity"`
	ExpiryDate string           `json:"expiryDate"`
	Category   string           `json:"category"`
}

func (req medicineRequest) toMedicine(id string) (domain.Medicine, bool) {
	if req.Price == nil || req.Quantity == nil {
		return domain.Medicine{}, false
	}
	return domain.Medicine{
		ID:         id,
		Name:       req.Name,
		Price:      *req.Price,
		Quantity:   *req.Quantity,
		ExpiryDate: req.ExpiryDate,
		Category:   req.Category,
	}, true
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Search(r.URL.Query().Get("query")))
}

func (h *Handler) listInStock(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.InStock(r.URL.Query().Get("query")))
}

func (h *Handler) addMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, ok := req.toMedicine("")
	if !ok {
		respondError(w, http.StatusBadRequest, "name, price, quantity and expiryDate are required")
		return
	}
	added, err := h.ledger.Add(m)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, added)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, ok := req.toMedicine(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusBadRequest, "name, price, quantity and expiryDate are required")
		return
	}
	updated, err := h.ledger.Update(m)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) removeMedicine(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Remove(chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Cart handlers

type cartResponse struct {
	ID           string               `json:"id"`
	Items        []domain.InvoiceItem `json:"items"`
	CustomerName string               `json:"customerName"`
	Total        decimal.Decimal      `json:"total"`
	Added        *bool                `json:"added,omitempty"`
}

func newCartResponse(id string, cart *billing.Cart) cartResponse {
	return cartResponse{
		ID:           id,
		Items:        cart.Items(),
		CustomerName: cart.CustomerName(),
		Total:        cart.Total(),
	}
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) (string, *billing.Cart, bool) {
	id := chi.URLParam(r, "id")
	cart, err := h.carts.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return "", nil, false
	}
	return id, cart, true
}

func (h *Handler) openCart(w http.ResponseWriter, r *http.Request) {
	id, cart := h.carts.Open()
	respondJSON(w, http.StatusCreated, newCartResponse(id, cart))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(id, cart))
}

func (h *Handler) abandonCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Close(chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	cart.Clear()
	respondJSON(w, http.StatusOK, newCartResponse(id, cart))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	var payload struct {
		MedicineID string `json:"medicineId"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.MedicineID == "" {
		respondError(w, http.StatusBadRequest, "medicineId is required")
		return
	}
	med, err := h.ledger.Get(payload.MedicineID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	added := cart.AddItem(med)
	resp := newCartResponse(id, cart)
	resp.Added = &added
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	cart.RemoveItem(chi.URLParam(r, "medicineID"))
	respondJSON(w, http.StatusOK, newCartResponse(id, cart))
}

func (h *Handler) setCustomer(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	var payload struct {
		CustomerName string `json:"customerName"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cart.SetCustomerName(payload.CustomerName)
	respondJSON(w, http.StatusOK, newCartResponse(id, cart))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	sale, err := h.recorder.Checkout(cart)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if sale == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.carts.Close(id); err != nil {
		log.Printf("close cart %s after sale %s: %v", id, sale.ID, err)
	}
	respondJSON(w, http.StatusCreated, sale)
}

// Sales handlers

func (h *Handler) salesHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.views.SalesHistory())
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.recorder.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func (h *Handler) printInvoice(w http.ResponseWriter, r *http.Request) {
	sale, err := h.recorder.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := reports.WriteInvoice(w, sale); err != nil {
		log.Printf("unable to write invoice %s: %v", sale.ID, err)
	}
}

// Reports

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.views.Dashboard())
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold, ok := queryInt(w, r, "threshold", h.views.LowStockThreshold)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.views.LowStock(threshold))
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	months, ok := queryInt(w, r, "months", h.views.ExpiryHorizon)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.views.ExpiringSoon(months))
}

func (h *Handler) expired(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.views.Expired())
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.views.Revenue())
}

// Helpers

func queryInt(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		respondError(w, http.StatusBadRequest, key+" must be a non-negative integer")
		return 0, false
	}
	return value, true
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrMedicineNotFound),
		errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrCartNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("unexpected error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
