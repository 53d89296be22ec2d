package transport

import (
	"errors"
	"net/http"

	"threadline/internal/domain"
	"threadline/internal/middleware"
	"threadline/internal/repository"
	"threadline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart request payload. Quantity
// defaults to 1 when omitted.
type AddItemRequest struct {
	ProductID    string `json:"productId" validate:"required,uuid"`
	SelectedSize string `json:"selectedSize" validate:"required,oneof=xs s m l xl"`
	Quantity     int    `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateQuantityRequest represents the update-quantity request payload
type UpdateQuantityRequest struct {
	ProductID    string `json:"productId" validate:"required,uuid"`
	SelectedSize string `json:"selectedSize" validate:"required,oneof=xs s m l xl"`
	Quantity     int    `json:"quantity" validate:"required,gte=1"`
}

// RemoveItemRequest represents the remove-from-cart request payload
type RemoveItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes. Cart routes carry no auth
// at this layer: the cart ID is held client-side before login.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/carts/{cartID}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/", h.AddItem)
		r.Put("/", h.UpdateQuantity)
		r.Delete("/", h.RemoveItem)
	})
}

// GetCart handles fetching a cart with joined product fields
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.parseCartID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), cartID)
	if err != nil {
		h.respondCartError(w, err, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, "Cart retrieved successfully", cart)
}

// AddItem handles appending a line item to a cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.parseCartID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), cartID, productID, domain.Size(req.SelectedSize), req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to add product to cart")
		return
	}

	h.logger.Info("Product added to cart",
		zap.String("cart_id", cartID.String()),
		zap.String("product_id", productID.String()),
		zap.String("size", req.SelectedSize),
		zap.Int("quantity", req.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusOK, "Product added to cart successfully", cart)
}

// UpdateQuantity handles setting the quantity on a cart line
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.parseCartID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	cart, err := h.cartService.UpdateQuantity(r.Context(), cartID, productID, domain.Size(req.SelectedSize), req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to update cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, "Cart item updated successfully", cart)
}

// RemoveItem handles removing every line for a product, size-agnostic.
// Removing an absent product succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.parseCartID(w, r)
	if !ok {
		return
	}

	var req RemoveItemRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), cartID, productID)
	if err != nil {
		h.respondCartError(w, err, "failed to remove product from cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, "Product removed from cart successfully", cart)
}

func (h *CartHandler) parseCartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cartID, err := uuid.Parse(chi.URLParam(r, "cartID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart ID")
		return uuid.Nil, false
	}
	return cartID, true
}

func (h *CartHandler) decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Cart request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCartItemNotFound),
		errors.Is(err, service.ErrSizeNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, service.ErrQuantityTooLow):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
