package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	ordersmemory "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/memory"
	ordersworkflows "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/workflows"
	"github.com/sellerdesk/backoffice/internal/domains/orders/application"
	sellersapp "github.com/sellerdesk/backoffice/internal/domains/sellers/application"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

const sellerID = "seller-1"

func newTestRouter(t *testing.T) (*gin.Engine, *catalogmemory.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := catalogmemory.NewRepository()
	repo := ordersmemory.NewRepository(products)
	identity := sellersapp.NewSharedSellerIdentity(sellerID)
	service := application.NewService(repo, identity)
	responder := sharederrors.NewResponder("https://sellerdesk.test/problems")
	handler := NewHandler(service, ordersworkflows.NewInlineOrderWorkflows(service), identity, responder)

	router := gin.New()
	router.GET("/api/orders", handler.ListOrders)
	router.GET("/api/orders/:id", handler.GetOrder)
	router.POST("/api/orders", handler.CreateOrder)
	router.PUT("/api/orders/:id/status", handler.UpdateStatus)
	return router, products
}

func seedProduct(t *testing.T, products *catalogmemory.Repository, name string, price float64, stock int) *catalogdomain.Product {
	t.Helper()
	p, err := products.Save(context.Background(), &catalogdomain.Product{SellerID: sellerID, Name: name, Price: price, Stock: stock, Active: true})
	require.NoError(t, err)
	return p
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderEndpoint_Created(t *testing.T) {
	router, products := newTestRouter(t)
	keyboard := seedProduct(t, products, "Keyboard", 49.90, 10)

	rec := postJSON(router, "/api/orders", gin.H{
		"customerName": "Ada Lovelace",
		"items":        []gin.H{{"productId": keyboard.ID, "quantity": 2}},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Pending", body["status"])
	require.InDelta(t, 99.80, body["totalAmount"].(float64), 0.001)
}

func TestCreateOrderEndpoint_UnknownProductIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(router, "/api/orders", gin.H{
		"customerName": "Ada Lovelace",
		"items":        []gin.H{{"productId": "missing", "quantity": 1}},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestCreateOrderEndpoint_InsufficientStockIs409WithDetails(t *testing.T) {
	router, products := newTestRouter(t)
	keyboard := seedProduct(t, products, "Keyboard", 49.90, 1)

	rec := postJSON(router, "/api/orders", gin.H{
		"customerName": "Ada Lovelace",
		"items":        []gin.H{{"productId": keyboard.ID, "quantity": 2}},
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, keyboard.ID, problem["productId"])
	require.Equal(t, float64(1), problem["available"])
	require.Equal(t, float64(2), problem["requested"])
}

func TestCreateOrderEndpoint_ValidationIs400(t *testing.T) {
	router, products := newTestRouter(t)
	keyboard := seedProduct(t, products, "Keyboard", 49.90, 10)

	rec := postJSON(router, "/api/orders", gin.H{
		"customerName": "Ada Lovelace",
		"items":        []gin.H{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(router, "/api/orders", gin.H{
		"customerName": "Ada Lovelace",
		"items":        []gin.H{{"productId": keyboard.ID, "quantity": 1001}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	router, products := newTestRouter(t)
	keyboard := seedProduct(t, products, "Keyboard", 49.90, 10)

	rec := postJSON(router, "/api/orders", gin.H{
		"customerName": "Ada Lovelace",
		"items":        []gin.H{{"productId": keyboard.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	orderID := created["id"].(string)

	put := func(status string) *httptest.ResponseRecorder {
		payload, _ := json.Marshal(gin.H{"status": status})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/orders/%s/status", orderID), bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, put("Processing").Code)

	// Skipping straight to Delivered is an illegal transition.
	require.Equal(t, http.StatusConflict, put("Delivered").Code)

	require.Equal(t, http.StatusBadRequest, put("Lost").Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/does-not-exist", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
