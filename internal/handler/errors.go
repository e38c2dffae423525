package handler

import (
	"errors"
	"net/http"

	"bookstore-be/internal/logger"
	"bookstore-be/internal/order"
	"bookstore-be/internal/utils"

	"go.uber.org/zap"
)

// writeServiceError maps an order engine error onto a status code and the
// JSON error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *order.ValidationError
		stockErr *order.InsufficientStockError
	)

	switch {
	case errors.As(err, &verr):
		utils.WriteJSONError(w, r, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.As(err, &stockErr):
		utils.WriteJSONError(w, r, http.StatusConflict, stockErr.Error(), stockErr)
	case errors.Is(err, order.ErrBookNotFound):
		utils.WriteJSONError(w, r, http.StatusNotFound, "Book not found", nil)
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, r, http.StatusNotFound, "Order not found", nil)
	case errors.Is(err, order.ErrInvalidTransition):
		utils.WriteJSONError(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, order.ErrTransactionAborted):
		utils.WriteJSONError(w, r, http.StatusServiceUnavailable, "Transaction aborted, please retry", nil)
	default:
		logger.FromCtx(r.Context()).Error("unhandled service error",
			zap.String("layer", "handler"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, r, http.StatusInternalServerError, "Internal server error", nil)
	}
}
