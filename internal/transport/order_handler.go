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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderItemRequest is one checkout line. The price field is accepted
// for wire compatibility with older clients but never trusted: unit
// prices are re-derived from the catalog server-side.
type OrderItemRequest struct {
	Product      string          `json:"product" validate:"required,uuid"`
	Quantity     int             `json:"quantity" validate:"required,gte=1"`
	SelectedSize string          `json:"selectedSize" validate:"required,oneof=xs s m l xl"`
	Price        decimal.Decimal `json:"price"`
}

// CreateOrderRequest represents the checkout request payload
type CreateOrderRequest struct {
	Address string             `json:"address" validate:"required"`
	Phone   string             `json:"phone" validate:"required"`
	Items   []OrderItemRequest `json:"items" validate:"omitempty,dive"`
}

// UpdateStatusRequest represents the admin status transition payload
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. Every order route needs
// an authenticated caller; status transitions additionally need the
// admin role.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/create", h.CreateOrder)
		r.Get("/user", h.GetUserOrders)
		r.Get("/{orderID}", h.GetOrder)
		r.Delete("/{orderID}", h.CancelOrder)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Patch("/{orderID}/status", h.UpdateStatus)
		})
	})
}

// CreateOrder handles checkout: it snapshots the submitted lines into
// a priced pending order.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.OrderLineInput, 0, len(req.Items))
	for _, line := range req.Items {
		productID, err := uuid.Parse(line.Product)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		items = append(items, service.OrderLineInput{
			ProductID:    productID,
			SelectedSize: domain.Size(line.SelectedSize),
			Quantity:     line.Quantity,
		})
	}

	order, err := h.orderService.Create(r.Context(), userID, req.Address, req.Phone, items)
	if err != nil {
		h.respondOrderError(w, err, "failed to create order")
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total_amount", order.TotalAmount.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, "Order created successfully", order)
}

// GetUserOrders handles listing the caller's orders, newest first
func (h *OrderHandler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListForUser(r.Context(), userID)
	if err != nil {
		h.respondOrderError(w, err, "failed to get user orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, "User orders retrieved successfully", orders)
}

// GetOrder handles fetching one of the caller's own orders
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	orderID, ok := h.parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), orderID, userID)
	if err != nil {
		h.respondOrderError(w, err, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, "Order retrieved successfully", order)
}

// CancelOrder handles cancelling the caller's own pending order
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	orderID, ok := h.parseOrderID(w, r)
	if !ok {
		return
	}

	if err := h.orderService.Cancel(r.Context(), orderID, userID); err != nil {
		h.respondOrderError(w, err, "failed to cancel order")
		return
	}

	h.logger.Info("Order cancelled",
		zap.String("order_id", orderID.String()),
		zap.String("user_id", userID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, "Order cancelled successfully", nil)
}

// UpdateStatus handles admin fulfilment transitions
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.AdvanceStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		h.respondOrderError(w, err, "failed to update order status")
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, "Order status updated successfully", order)
}

func (h *OrderHandler) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.logger.Error("Invalid user ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}

	return userID, true
}

func (h *OrderHandler) parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return uuid.Nil, false
	}
	return orderID, true
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, service.ErrSizeNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrQuantityTooLow),
		errors.Is(err, repository.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrOrderNotCancellable),
		errors.Is(err, service.ErrInvalidStatusTransition):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Order operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
