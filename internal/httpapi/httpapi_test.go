package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"booktime-be/internal/address"
	"booktime-be/internal/basket"
	"booktime-be/internal/catalog"
	"booktime-be/internal/notification"
	"booktime-be/internal/order"
	"booktime-be/internal/user"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, email, password string, firstName, lastName *string) (string, user.User, error) {
	args := m.Called(ctx, email, password, firstName, lastName)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetProduct(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) ListByTag(ctx context.Context, tagSlug string, limit, page *uint16) ([]*catalog.Product, error) {
	args := m.Called(ctx, tagSlug, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) IsActive(ctx context.Context, productID uint) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

type MockBasketService struct {
	mock.Mock
}

func (m *MockBasketService) ResolveCurrent(ctx context.Context, token string) (*basket.Basket, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*basket.Basket), args.Error(1)
}

func (m *MockBasketService) GetOrCreate(ctx context.Context, token string) (*basket.Basket, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*basket.Basket), args.Error(1)
}

func (m *MockBasketService) AddItem(ctx context.Context, token string, productID uint) (*basket.Basket, error) {
	args := m.Called(ctx, token, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*basket.Basket), args.Error(1)
}

func (m *MockBasketService) SetLineQuantity(ctx context.Context, basketID uuid.UUID, productID uint, quantity int) error {
	args := m.Called(ctx, basketID, productID, quantity)
	return args.Error(0)
}

func (m *MockBasketService) UpdateLines(ctx context.Context, basketID uuid.UUID, edits map[uint]int) error {
	args := m.Called(ctx, basketID, edits)
	return args.Error(0)
}

func (m *MockBasketService) IsEmpty(ctx context.Context, basketID uuid.UUID) (bool, error) {
	args := m.Called(ctx, basketID)
	return args.Bool(0), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, token string, billingID, shippingID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, token, billingID, shippingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter *order.Filter, limit, page *int32) ([]*order.Order, error) {
	args := m.Called(ctx, filter, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderDetail(ctx context.Context, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) SetStatus(ctx context.Context, orderID uint, status order.Status) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderService) ListPaidOrders(ctx context.Context, limit, page *int32) ([]*order.Order, error) {
	args := m.Called(ctx, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) ListPaidOrderLines(ctx context.Context, limit, page *int32) ([]*order.Line, error) {
	args := m.Called(ctx, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Line), args.Error(1)
}

type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) List(ctx context.Context) ([]*address.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*address.Address), args.Error(1)
}

func (m *MockAddressService) Get(ctx context.Context, addressID uuid.UUID) (*address.Address, error) {
	args := m.Called(ctx, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressService) Create(ctx context.Context, input address.CreateAddressInput) (*address.Address, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressService) Update(ctx context.Context, input address.UpdateAddressInput) (*address.Address, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressService) Delete(ctx context.Context, addressID uuid.UUID) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Notify(ctx context.Context, event notification.Event, payload notification.Payload) {
	m.Called(ctx, event, payload)
}

type apiMocks struct {
	users     *MockUserService
	catalog   *MockCatalogService
	baskets   *MockBasketService
	orders    *MockOrderService
	addresses *MockAddressService
	notifier  *MockDispatcher
}

func newTestRouter() (http.Handler, apiMocks) {
	m := apiMocks{
		users:     new(MockUserService),
		catalog:   new(MockCatalogService),
		baskets:   new(MockBasketService),
		orders:    new(MockOrderService),
		addresses: new(MockAddressService),
		notifier:  new(MockDispatcher),
	}
	h := NewHandler(m.users, m.catalog, m.baskets, m.orders, m.addresses, m.notifier)
	return NewRouter(h), m
}

func bearerFor(t *testing.T, userID uint, email, role string) string {
	t.Helper()
	token, err := user.GenerateJWT(userID, role, email)
	assert.NoError(t, err)
	return "Bearer " + token
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	assert.NoError(t, err)
	return bytes.NewBuffer(b)
}

func TestGetBasket(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("NoCookie returns empty basket", func(t *testing.T) {
		router, _ := newTestRouter()

		req := httptest.NewRequest(http.MethodGet, "/basket", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"lines":[],"total":0}`, rec.Body.String())
	})

	t.Run("CookieWithBasket", func(t *testing.T) {
		router, m := newTestRouter()

		basketID := uuid.New()
		m.baskets.On("ResolveCurrent", mock.Anything, "tok-1").
			Return(&basket.Basket{
				ID:     basketID,
				Status: basket.StatusOpen,
				Lines: []basket.Line{
					{ProductID: 10, ProductName: "Backgammon for Dummies", ProductSlug: "backgammon-for-dummies", Quantity: 2, Price: 1500},
				},
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/basket", nil)
		req.AddCookie(&http.Cookie{Name: basketCookie, Value: "tok-1"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total":3000`)
	})
}

func TestAddToBasket(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("MintsCookieOnFirstAdd", func(t *testing.T) {
		router, m := newTestRouter()

		m.baskets.On("AddItem", mock.Anything, mock.AnythingOfType("string"), uint(10)).
			Return(&basket.Basket{ID: uuid.New(), Status: basket.StatusOpen}, nil)

		req := httptest.NewRequest(http.MethodPost, "/basket/add", jsonBody(t, map[string]uint{"product_id": 10}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		var found bool
		for _, c := range cookies {
			if c.Name == basketCookie && c.Value != "" {
				found = true
			}
		}
		assert.True(t, found, "expected a basket cookie to be set")
	})

	t.Run("InactiveProduct", func(t *testing.T) {
		router, m := newTestRouter()

		m.baskets.On("AddItem", mock.Anything, "tok-1", uint(99)).
			Return(nil, basket.ErrInvalidProduct)

		req := httptest.NewRequest(http.MethodPost, "/basket/add", jsonBody(t, map[string]uint{"product_id": 99}))
		req.AddCookie(&http.Cookie{Name: basketCookie, Value: "tok-1"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	billingID := uuid.New()
	shippingID := uuid.New()
	body := func() *bytes.Buffer {
		return jsonBody(t, map[string]string{
			"billing_address_id":  billingID.String(),
			"shipping_address_id": shippingID.String(),
		})
	}

	t.Run("Anonymous", func(t *testing.T) {
		router, _ := newTestRouter()

		req := httptest.NewRequest(http.MethodPost, "/checkout", body())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		router, m := newTestRouter()

		m.orders.On("Checkout", mock.Anything, "tok-1", billingID, shippingID).
			Return(&order.Order{ID: 5, Status: order.StatusNew, Total: 3700}, nil)

		req := httptest.NewRequest(http.MethodPost, "/checkout", body())
		req.Header.Set("Authorization", bearerFor(t, 1, "guy@example.com", "CUSTOMER"))
		req.AddCookie(&http.Cookie{Name: basketCookie, Value: "tok-1"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":5`)
	})

	t.Run("AlreadyConverted", func(t *testing.T) {
		router, m := newTestRouter()

		m.orders.On("Checkout", mock.Anything, "tok-1", billingID, shippingID).
			Return(nil, basket.ErrBasketAlreadyConverted)

		req := httptest.NewRequest(http.MethodPost, "/checkout", body())
		req.Header.Set("Authorization", bearerFor(t, 2, "guy2@example.com", "CUSTOMER"))
		req.AddCookie(&http.Cookie{Name: basketCookie, Value: "tok-1"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "already been checked out")
	})

	t.Run("ForeignAddress", func(t *testing.T) {
		router, m := newTestRouter()

		m.orders.On("Checkout", mock.Anything, "tok-1", billingID, shippingID).
			Return(nil, order.ErrAddressOwnershipMismatch)

		req := httptest.NewRequest(http.MethodPost, "/checkout", body())
		req.Header.Set("Authorization", bearerFor(t, 3, "guy3@example.com", "CUSTOMER"))
		req.AddCookie(&http.Cookie{Name: basketCookie, Value: "tok-1"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid address selection")
	})
}

func TestDashboardOrders(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("CustomerForbidden", func(t *testing.T) {
		router, _ := newTestRouter()

		req := httptest.NewRequest(http.MethodGet, "/dashboard/orders", nil)
		req.Header.Set("Authorization", bearerFor(t, 1, "guy@example.com", "CUSTOMER"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("StaffWithFilters", func(t *testing.T) {
		router, m := newTestRouter()

		m.orders.On("ListOrders", mock.Anything,
			mock.MatchedBy(func(f *order.Filter) bool {
				return f != nil &&
					f.CustomerEmail != nil && *f.CustomerEmail == "guy" &&
					f.Status != nil && *f.Status == order.StatusPaid &&
					f.CreatedFrom != nil
			}), (*int32)(nil), (*int32)(nil)).
			Return([]*order.Order{{ID: 1, Status: order.StatusPaid}}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/dashboard/orders?email=guy&status=PAID&created_from=2026-01-01", nil)
		req.Header.Set("Authorization", bearerFor(t, 9, "staff@example.com", "STAFF"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		m.orders.AssertExpectations(t)
	})

	t.Run("BadDate", func(t *testing.T) {
		router, _ := newTestRouter()

		req := httptest.NewRequest(http.MethodGet, "/dashboard/orders?created_from=nope", nil)
		req.Header.Set("Authorization", bearerFor(t, 9, "staff@example.com", "STAFF"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPaidOrderAPI(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	router, m := newTestRouter()

	m.orders.On("ListPaidOrderLines", mock.Anything, (*int32)(nil), (*int32)(nil)).
		Return([]*order.Line{
			{ID: 1, OrderID: 5, ProductID: 10, Quantity: 2, Price: 1500, ProductName: "Backgammon for Dummies"},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orderlines", nil)
	req.Header.Set("Authorization", bearerFor(t, 9, "staff@example.com", "STAFF"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backgammon for Dummies")
}

func TestContactUs(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Accepted", func(t *testing.T) {
		router, m := newTestRouter()

		m.notifier.On("Notify", mock.Anything, notification.EventContactMessage,
			notification.Payload{"name": "A Visitor", "message": "hello"}).Return()

		req := httptest.NewRequest(http.MethodPost, "/contact-us",
			jsonBody(t, map[string]string{"name": "A Visitor", "message": "hello"}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		m.notifier.AssertExpectations(t)
	})

	t.Run("EmptyMessage", func(t *testing.T) {
		router, _ := newTestRouter()

		req := httptest.NewRequest(http.MethodPost, "/contact-us",
			jsonBody(t, map[string]string{"name": "A Visitor"}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
