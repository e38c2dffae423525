package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bookstore-be/internal/logger"
	"bookstore-be/internal/order"
	"bookstore-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type OrderHandler struct {
	OrderSvc order.Service
}

func NewOrderHandler(orderSvc order.Service) *OrderHandler {
	return &OrderHandler{OrderSvc: orderSvc}
}

type listResponse struct {
	Success    bool             `json:"success"`
	Data       []*order.Order   `json:"data"`
	Pagination order.Pagination `json:"pagination"`
}

type statusRequest struct {
	Status *string `json:"status"`
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// CreateOrder handles POST /api/orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		logger.FromCtx(r.Context()).Warn("invalid order payload", zap.String("layer", "handler"), zap.Error(err))
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Invalid JSON payload", nil)
		return
	}

	o, err := h.OrderSvc.PlaceOrder(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteSuccess(w, r, http.StatusCreated, o, "Order created successfully")
}

// GetOrder handles GET /api/orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(r.PathValue("id"))
	if !ok {
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Invalid order id", nil)
		return
	}

	o, err := h.OrderSvc.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteSuccess(w, r, http.StatusOK, o, "")
}

// ListOrders handles GET /api/orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := utils.ParseOptionalInt(query.Get("page"), 0)
	if err != nil {
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Validation failed", map[string]string{"page": "Page must be a number"})
		return
	}
	limit, err := utils.ParseOptionalInt(query.Get("limit"), 0)
	if err != nil {
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Validation failed", map[string]string{"limit": "Limit must be a number"})
		return
	}

	result, err := h.OrderSvc.ListOrders(r.Context(), order.ListFilter{
		Status: strings.TrimSpace(query.Get("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, listResponse{
		Success:    true,
		Data:       result.Orders,
		Pagination: result.Pagination,
	})
}

// UpdateOrderStatus handles PUT /api/orders/{id}.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(r.PathValue("id"))
	if !ok {
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Invalid order id", nil)
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Invalid JSON payload", nil)
		return
	}
	status := strings.TrimSpace(utils.PtrString(req.Status))
	if status == "" {
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Status is required", nil)
		return
	}

	o, err := h.OrderSvc.SetOrderStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteSuccess(w, r, http.StatusOK, o, "Order status updated to "+string(o.Status))
}
