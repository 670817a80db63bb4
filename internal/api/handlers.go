package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
)

const maxBodySize = 1 << 20

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func ListProducts(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, products)
	}
}

func GetProduct(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, logger, domain.NewValidationError("id", "must be an integer"))
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, product)
	}
}

// PayProduct creates a provider order for one unit of a catalog product.
func PayProduct(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.Atoi(r.URL.Query().Get("product_id"))
		if err != nil {
			writeError(w, r, logger, domain.NewValidationError("product_id", "must be an integer"))
			return
		}

		result, err := svc.CreateProductOrder(r.Context(), productID, domain.Customer{})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, createOrderResponse{
			ID:      result.ProviderOrderID,
			OrderID: result.ProviderOrderID,
			Status:  result.Status.String(),
		})
	}
}

func CreateOrder(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := decodeBody(r, createOrderBody, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}

		result, err := svc.CreateOrder(r.Context(), req.toCheckout())
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, createOrderResponse{
			ID:      result.ProviderOrderID,
			OrderID: result.ProviderOrderID,
			Status:  result.Status.String(),
		})
	}
}

func CaptureOrder(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req captureOrderRequest
		if err := decodeBody(r, captureOrderBody, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}

		result, err := svc.CaptureOrder(r.Context(), req.OrderID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, captureOrderResponse{
			Status:  result.Status,
			OrderID: result.ProviderOrderID,
		})
	}
}

func GetOrder(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, r, logger, domain.NewValidationError("id", "must be an integer"))
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, mapOrder(order))
	}
}

func ListOrders(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter, err := domain.NewOrderFilter(query.Get("skip"), query.Get("limit"), query.Get("status"))
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		result, err := svc.ListOrders(r.Context(), filter)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, listOrdersResponse{
			Orders: lo.Map(result.Orders, func(o domain.Order, _ int) orderResponse { return mapOrder(o) }),
			Count:  len(result.Orders),
			Total:  result.Total,
			Skip:   filter.Skip,
			Limit:  filter.Limit,
		})
	}
}

// decodeBody checks the body against its schema, then decodes it into dst.
func decodeBody(r *http.Request, schema bodySchema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return domain.NewValidationError("body", "unreadable")
	}
	if len(body) > maxBodySize {
		return domain.NewValidationError("body", "too large")
	}

	if err := schema.Validate(body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return domain.NewValidationError("body", "malformed JSON")
	}

	return nil
}
