package transport

import (
	"errors"
	"net/http"

	"threadline/internal/middleware"
	"threadline/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductHandler serves read-only catalog endpoints.
type ProductHandler struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productRepo repository.ProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productRepo: productRepo,
		logger:      logger,
	}
}

// RegisterRoutes registers all product routes. The catalog is public.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productID}", h.GetProduct)
	})
}

// ListProducts handles listing the catalog, optionally filtered by the
// category query parameter.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.productRepo.List(r.Context(), category)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, "Products retrieved successfully", products)
}

// GetProduct handles fetching a single product with its size-stock map
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productRepo.FindByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, "Product retrieved successfully", product)
}
