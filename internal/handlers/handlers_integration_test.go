package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"greencart/internal/app"
	"greencart/internal/config"
	"greencart/internal/handlers"
	"greencart/internal/middleware"
	"greencart/internal/models"
	"greencart/internal/payments"
	"greencart/pkg/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	keySecret     = "rzp_test_secret"
	webhookSecret = "whsec_test"
	sellerEmail   = "seller@greencart.dev"
	sellerPass    = "sellerpass"
)

// MockGateway is a mock implementation of payments.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, req payments.OrderRequest) (*payments.GatewayOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.GatewayOrder), args.Error(1)
}

type testEnv struct {
	app     *fiber.App
	repos   app.Repositories
	gateway *MockGateway
	apple   *models.Product
	milk    *models.Product

	// Asha is registered with one delivery address.
	token     string
	addressID string
}

// setupApp builds the full application on a private in-memory sqlite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		ServiceName:           "greencart-test",
		DBDriver:              config.DriverSQLite,
		DatabaseDSN:           fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
		JWTSecret:             "test_jwt_secret",
		SellerEmail:           sellerEmail,
		SellerPassword:        sellerPass,
		RazorpayKeyID:         "rzp_test_key",
		RazorpayKeySecret:     keySecret,
		RazorpayWebhookSecret: webhookSecret,
		Currency:              "INR",
	}

	repos, closeDB, err := app.NewRepositories(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDB() })

	env := &testEnv{repos: repos, gateway: new(MockGateway)}
	env.apple = &models.Product{Name: "Apple 1kg", Category: "Fruits", Price: 120, OfferPrice: 100, InStock: true}
	env.milk = &models.Product{Name: "Amul Milk 1L", Category: "Dairy", Price: 60, OfferPrice: 55, InStock: true}
	require.NoError(t, repos.Products.Create(context.Background(), env.apple))
	require.NoError(t, repos.Products.Create(context.Background(), env.milk))

	env.app = app.New(cfg, app.Dependencies{
		Repositories: repos,
		Gateway:      env.gateway,
		Deduper:      cache.NewMemoryStore(),
		Log:          zerolog.Nop(),
	})
	env.token, env.addressID = env.shopper(t, "Asha", "asha@example.com")
	return env
}

type apiResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Token    string           `json:"token"`
	Key      string           `json:"key"`
	DBOrder  string           `json:"dbOrderId"`
	Order    json.RawMessage  `json:"order"`
	Orders   []models.Order   `json:"orders"`
	Products []models.Product `json:"products"`
	Address  models.Address   `json:"address"`
	Addrs    []models.Address `json:"addresses"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()
	status, res := e.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, res.Success, res.Message)
	require.NotEmpty(t, res.Token)
	return res.Token
}

// shopper registers a user and gives them a delivery address.
func (e *testEnv) shopper(t *testing.T, name, email string) (string, string) {
	t.Helper()
	token := e.register(t, name, email)
	_, res := e.do(t, http.MethodPost, "/api/address/add", token, map[string]any{
		"address": map[string]string{
			"firstName": name, "lastName": "Rao", "email": email,
			"street": "MG Road 1", "city": "Pune", "state": "MH", "zipcode": "411001",
			"country": "IN", "phone": "9999999999",
		},
	})
	require.True(t, res.Success, res.Message)
	require.NotEmpty(t, res.Address.ID)
	return token, res.Address.ID
}

func (e *testEnv) sellerToken(t *testing.T) string {
	t.Helper()
	_, res := e.do(t, http.MethodPost, "/api/seller/login", "", map[string]string{"email": sellerEmail, "password": sellerPass})
	require.True(t, res.Success, res.Message)
	return res.Token
}

func TestAuthRoutes(t *testing.T) {
	env := setupApp(t)
	token := env.token

	_, res := env.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "password123",
	})
	assert.False(t, res.Success)
	assert.Equal(t, "User already exists", res.Message)

	status, res := env.do(t, http.MethodPost, "/api/user/login", "", map[string]string{"email": "asha@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid email or password", res.Message)

	// Login sets the session cookie.
	payload, _ := json.Marshal(map[string]string{"email": "asha@example.com", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.UserCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/user/is-auth", nil)
	req.AddCookie(&http.Cookie{Name: middleware.UserCookie, Value: session.Value})
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, res = env.do(t, http.MethodGet, "/api/user/is-auth", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, res.Success)

	status, res = env.do(t, http.MethodGet, "/api/user/is-auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Not Authorized", res.Message)

	// A user token does not open seller routes, and the other way round.
	status, _ = env.do(t, http.MethodGet, "/api/order/seller", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(t, http.MethodGet, "/api/order/user", env.sellerToken(t), nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	_, res = env.do(t, http.MethodPost, "/api/seller/login", "", map[string]string{"email": sellerEmail, "password": "guess"})
	assert.False(t, res.Success)
}

func TestProductRoutes(t *testing.T) {
	env := setupApp(t)

	status, res := env.do(t, http.MethodGet, "/api/product/list", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, res.Success)
	assert.Len(t, res.Products, 2)

	_, res = env.do(t, http.MethodGet, "/api/product/does-not-exist", "", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Product not found", res.Message)
}

func TestCartAndAddressRoutes(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "Ravi", "ravi@example.com")

	_, res := env.do(t, http.MethodPost, "/api/cart/update", token, map[string]any{
		"cartItems": map[string]int{env.apple.ID: 2, env.milk.ID: 0},
	})
	require.True(t, res.Success, res.Message)

	_, res = env.do(t, http.MethodPost, "/api/address/add", token, map[string]any{
		"address": map[string]string{
			"firstName": "Asha", "lastName": "Rao", "email": "asha@example.com",
			"street": "MG Road 1", "city": "Pune", "state": "MH", "zipcode": "411001",
			"country": "IN", "phone": "9999999999",
		},
	})
	require.True(t, res.Success, res.Message)
	assert.NotEmpty(t, res.Address.ID)

	_, res = env.do(t, http.MethodPost, "/api/address/add", token, map[string]any{
		"address": map[string]string{"firstName": "Asha"},
	})
	assert.False(t, res.Success)
	assert.Equal(t, "Validation failed", res.Message)

	_, res = env.do(t, http.MethodGet, "/api/address/get", token, nil)
	require.True(t, res.Success)
	require.Len(t, res.Addrs, 1)
	assert.Equal(t, "Pune", res.Addrs[0].City)
}

func TestPlaceOrderCOD(t *testing.T) {
	env := setupApp(t)
	token := env.token

	// Client supplied prices and amounts are ignored.
	_, res := env.do(t, http.MethodPost, "/api/order/cod", token, map[string]any{
		"userId":  "someone-else",
		"amount":  1,
		"address": env.addressID,
		"items": []map[string]any{
			{"product": env.apple.ID, "quantity": 2, "offerPrice": 0.01},
			{"product": env.milk.ID, "quantity": 1},
		},
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Order Placed Successfully", res.Message)

	_, res = env.do(t, http.MethodGet, "/api/order/user", token, nil)
	require.True(t, res.Success)
	require.Len(t, res.Orders, 1)
	// 255 + floor(5.1)
	assert.Equal(t, 260.0, res.Orders[0].Amount)
	assert.Equal(t, models.PaymentTypeCOD, res.Orders[0].PaymentType)
	require.Len(t, res.Orders[0].Items, 2)
	assert.NotNil(t, res.Orders[0].Items[0].Product)
	require.NotNil(t, res.Orders[0].Address)
	assert.Equal(t, env.addressID, res.Orders[0].Address.ID)

	for name, body := range map[string]map[string]any{
		"empty items":     {"address": env.addressID, "items": []any{}},
		"missing address": {"items": []map[string]any{{"product": env.apple.ID, "quantity": 1}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, res := env.do(t, http.MethodPost, "/api/order/cod", token, body)
			assert.False(t, res.Success)
			assert.Equal(t, "Invalid data", res.Message)
		})
	}

	_, res = env.do(t, http.MethodPost, "/api/order/cod", token, map[string]any{
		"address": env.addressID,
		"items":   []map[string]any{{"product": "ghost", "quantity": 1}},
	})
	assert.False(t, res.Success)
	assert.Equal(t, "Product not found", res.Message)
}

func TestPlaceOrderRejectsForeignAddress(t *testing.T) {
	env := setupApp(t)
	mallory, _ := env.shopper(t, "Mallory", "mallory@example.com")

	for name, addressID := range map[string]string{
		"another user's address": env.addressID,
		"unknown address":        "no-such-address",
	} {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"/api/order/cod", "/api/order/razorpay"} {
				_, res := env.do(t, http.MethodPost, path, mallory, map[string]any{
					"address": addressID,
					"items":   []map[string]any{{"product": env.apple.ID, "quantity": 1}},
				})
				assert.False(t, res.Success, path)
				assert.Equal(t, "Invalid data", res.Message, path)
			}
		})
	}

	_, res := env.do(t, http.MethodGet, "/api/order/user", mallory, nil)
	require.True(t, res.Success)
	assert.Empty(t, res.Orders)
	env.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestRazorpayCheckoutAndVerify(t *testing.T) {
	env := setupApp(t)
	token := env.token

	env.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req payments.OrderRequest) bool {
		return req.Amount == 102 && req.Currency == "INR"
	})).Return(&payments.GatewayOrder{ID: "order_rzp_1", Entity: "order", Amount: 10200, Currency: "INR", Status: "created"}, nil).Once()

	_, res := env.do(t, http.MethodPost, "/api/order/razorpay", token, map[string]any{
		"address": env.addressID,
		"items":   []map[string]any{{"product": env.apple.ID, "quantity": 1}},
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "rzp_test_key", res.Key)
	assert.NotEmpty(t, res.DBOrder)
	var gwOrder payments.GatewayOrder
	require.NoError(t, json.Unmarshal(res.Order, &gwOrder))
	assert.Equal(t, "order_rzp_1", gwOrder.ID)
	assert.Equal(t, int64(10200), gwOrder.Amount)
	dbOrderID := res.DBOrder

	// Not listed until paid.
	_, res = env.do(t, http.MethodGet, "/api/order/user", token, nil)
	assert.Empty(t, res.Orders)

	_, res = env.do(t, http.MethodPost, "/api/order/razorpay/verify", token, map[string]any{
		"razorpay_order_id":   "order_rzp_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payments.Sign([]byte("order_rzp_1|pay_2"), keySecret),
		"orderId":             dbOrderID,
	})
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid signature", res.Message)

	_, res = env.do(t, http.MethodPost, "/api/order/razorpay/verify", token, map[string]any{
		"razorpay_order_id": "order_rzp_1",
		"orderId":           dbOrderID,
	})
	assert.False(t, res.Success)
	assert.Equal(t, "Missing fields", res.Message)

	_, res = env.do(t, http.MethodPost, "/api/order/razorpay/verify", token, map[string]any{
		"razorpay_order_id":   "order_rzp_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payments.Sign([]byte("order_rzp_1|pay_1"), keySecret),
		"orderId":             dbOrderID,
	})
	require.True(t, res.Success, res.Message)

	_, res = env.do(t, http.MethodGet, "/api/order/user", token, nil)
	require.Len(t, res.Orders, 1)
	assert.True(t, res.Orders[0].IsPaid)

	_, res = env.do(t, http.MethodGet, "/api/order/seller", env.sellerToken(t), nil)
	require.True(t, res.Success)
	assert.Len(t, res.Orders, 1)
	env.gateway.AssertExpectations(t)
}

func TestRazorpayGatewayFailure(t *testing.T) {
	env := setupApp(t)
	token := env.token

	env.gateway.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("razorpay create order: Authentication failed")).Once()

	status, res := env.do(t, http.MethodPost, "/api/order/razorpay", token, map[string]any{
		"address": env.addressID,
		"items":   []map[string]any{{"product": env.apple.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Authentication failed")
}

func TestRazorpayWebhook(t *testing.T) {
	env := setupApp(t)
	token := env.token

	env.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(&payments.GatewayOrder{ID: "order_rzp_7"}, nil).Once()
	_, res := env.do(t, http.MethodPost, "/api/order/razorpay", token, map[string]any{
		"address": env.addressID,
		"items":   []map[string]any{{"product": env.milk.ID, "quantity": 1}},
	})
	require.True(t, res.Success, res.Message)

	body := []byte(`{"entity":"event","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_7","order_id":"order_rzp_7","status":"captured"}}}}`)
	send := func(payload []byte, signature, eventID string) int {
		req := httptest.NewRequest(http.MethodPost, "/razorpay", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(handlers.HeaderRazorpaySignature, signature)
		req.Header.Set(handlers.HeaderRazorpayEventID, eventID)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusBadRequest, send(body, payments.Sign(body, "wrong"), "evt_1"))
	assert.Equal(t, http.StatusBadRequest, send([]byte("{"), payments.Sign([]byte("{"), webhookSecret), "evt_0"))
	assert.Equal(t, http.StatusOK, send(body, payments.Sign(body, webhookSecret), "evt_1"))
	assert.Equal(t, http.StatusOK, send(body, payments.Sign(body, webhookSecret), "evt_1"))

	_, res = env.do(t, http.MethodGet, "/api/order/user", token, nil)
	require.Len(t, res.Orders, 1)
	assert.True(t, res.Orders[0].IsPaid)
	assert.Equal(t, "pay_7", res.Orders[0].PaymentID)
}
