package customer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	handler "backend/api/handlers/customer"
	"backend/internal/common"
	"backend/internal/customer"
	"backend/internal/middleware"
	"backend/internal/tenant"
)

type staticResolver struct {
	tenants map[string]*tenant.Tenant
}

func (r *staticResolver) Resolve(_ context.Context, idOrSlug string) (*tenant.Tenant, error) {
	if t, ok := r.tenants[idOrSlug]; ok {
		return t, nil
	}
	return nil, tenant.ErrNotFound
}

// newTestRouter wires the customer routes behind the same middleware chain
// the real router uses.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:customer_api_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(tenant.ScopePlugin{}))
	require.NoError(t, db.AutoMigrate(&customer.Customer{}, &customer.ServiceAddress{}))

	resolver := &staticResolver{tenants: map[string]*tenant.Tenant{
		"acme":    {ID: "id-acme", Slug: "acme", Status: tenant.StatusActive},
		"id-acme": {ID: "id-acme", Slug: "acme", Status: tenant.StatusActive},
		"beta":    {ID: "id-beta", Slug: "beta", Status: tenant.StatusActive},
		"id-beta": {ID: "id-beta", Slug: "beta", Status: tenant.StatusActive},
	}}

	h := handler.NewHandler(customer.NewService(db))

	r := gin.New()
	r.Use(middleware.RequestContext(zap.NewNop()))
	r.Use(middleware.TenantGuard(resolver, zap.NewNop()))
	r.POST("/customers", h.Create)
	r.GET("/customers", h.List)
	r.GET("/customers/:id", h.Get)
	r.POST("/customers/:id/addresses", h.AddAddress)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, tenantHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tenantHeader != "" {
		req.Header.Set(middleware.HeaderTenantID, tenantHeader)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) common.APIResponse {
	t.Helper()
	var env common.APIResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

func TestCustomerAPI_CreateAndFetch(t *testing.T) {
	r := newTestRouter(t)

	resp := doJSON(t, r, http.MethodPost, "/customers", "acme", gin.H{
		"name":  "Jo Smith",
		"email": "jo@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)

	created, ok := env.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Jo Smith", created["name"])
	// The slug in the header must have been canonicalized before the row
	// was written.
	require.Equal(t, "id-acme", created["tenantId"])

	id := created["id"].(string)
	resp = doJSON(t, r, http.MethodGet, "/customers/"+id, "acme", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestCustomerAPI_ValidationError(t *testing.T) {
	r := newTestRouter(t)

	resp := doJSON(t, r, http.MethodPost, "/customers", "acme", gin.H{"email": "jo@example.com"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope(t, resp)
	require.False(t, env.Success)
	require.NotEmpty(t, env.Error)
}

func TestCustomerAPI_NoTenantHeaderRejected(t *testing.T) {
	r := newTestRouter(t)

	resp := doJSON(t, r, http.MethodGet, "/customers", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCustomerAPI_CrossTenantFetchIs404(t *testing.T) {
	r := newTestRouter(t)

	resp := doJSON(t, r, http.MethodPost, "/customers", "acme", gin.H{"name": "Jo"})
	require.Equal(t, http.StatusCreated, resp.Code)
	id := decodeEnvelope(t, resp).Data.(map[string]any)["id"].(string)

	resp = doJSON(t, r, http.MethodGet, "/customers/"+id, "beta", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCustomerAPI_AddressRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	resp := doJSON(t, r, http.MethodPost, "/customers", "acme", gin.H{"name": "Jo"})
	require.Equal(t, http.StatusCreated, resp.Code)
	id := decodeEnvelope(t, resp).Data.(map[string]any)["id"].(string)

	resp = doJSON(t, r, http.MethodPost, "/customers/"+id+"/addresses", "acme", gin.H{
		"label":      "Home",
		"street":     "12 Oak St",
		"city":       "Springfield",
		"postalCode": "12345",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	addr := decodeEnvelope(t, resp).Data.(map[string]any)
	require.Equal(t, "12 Oak St", addr["street"])
	require.Equal(t, id, addr["customerId"])
}
