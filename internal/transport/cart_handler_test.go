package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadline/internal/domain"
	"threadline/internal/repository"
	"threadline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mock repositories for testing

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, category string) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if category == "" || p.Category == category {
			products = append(products, p)
		}
	}
	return products, nil
}

type mockCartRepository struct {
	carts    map[uuid.UUID]*domain.Cart
	products *mockProductRepository
}

func newMockCartRepository(products *mockProductRepository) *mockCartRepository {
	return &mockCartRepository{
		carts:    make(map[uuid.UUID]*domain.Cart),
		products: products,
	}
}

func (m *mockCartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	stored := *cart
	stored.Items = nil
	m.carts[cart.ID] = &stored
	return nil
}

func (m *mockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	cart, exists := m.carts[id]
	if !exists {
		return nil, repository.ErrCartNotFound
	}

	joined := *cart
	joined.Items = make([]domain.CartItem, len(cart.Items))
	for i, item := range cart.Items {
		joined.Items[i] = item
		if product, ok := m.products.products[item.ProductID]; ok {
			summary := product.Summary()
			joined.Items[i].Product = &summary
		}
	}
	return &joined, nil
}

func (m *mockCartRepository) AddItem(ctx context.Context, cartID uuid.UUID, item *domain.CartItem) error {
	cart, exists := m.carts[cartID]
	if !exists {
		return repository.ErrCartNotFound
	}
	cart.Items = append(cart.Items, *item)
	return nil
}

func (m *mockCartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, size domain.Size, quantity int) error {
	cart, exists := m.carts[cartID]
	if !exists {
		return repository.ErrCartItemNotFound
	}
	for i, item := range cart.Items {
		if item.ProductID == productID && item.SelectedSize == size {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error {
	cart, exists := m.carts[cartID]
	if !exists {
		return repository.ErrCartNotFound
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

// envelope mirrors the response wrapper for decoding in tests
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("could not decode response envelope: %v", err)
	}
	return env
}

func newCatalogProduct(price string, category string, sizes map[domain.Size]int) *domain.Product {
	p, _ := decimal.NewFromString(price)
	return &domain.Product{
		ID:        uuid.New(),
		Title:     "Test Jacket",
		Price:     p,
		Category:  category,
		Image:     "https://example.com/jacket.jpg",
		Sizes:     sizes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

type cartFixture struct {
	router      chi.Router
	productRepo *mockProductRepository
	cartRepo    *mockCartRepository
	cartID      uuid.UUID
}

func newCartHandlerFixture() *cartFixture {
	productRepo := newMockProductRepository()
	cartRepo := newMockCartRepository(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	logger := zap.NewNop()

	router := chi.NewRouter()
	NewCartHandler(cartService, logger).RegisterRoutes(router)

	cartID := uuid.New()
	cartRepo.Create(context.Background(), &domain.Cart{ID: cartID, CreatedAt: time.Now()})

	return &cartFixture{router: router, productRepo: productRepo, cartRepo: cartRepo, cartID: cartID}
}

func doRequest(router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (f *cartFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	return doRequest(f.router, method, path, body)
}

func TestAddItemEndpoint(t *testing.T) {
	f := newCartHandlerFixture()

	product := newCatalogProduct("29.95", "Women", map[domain.Size]int{domain.SizeM: 5})
	f.productRepo.Create(context.Background(), product)

	w := f.do(http.MethodPost, "/api/carts/"+f.cartID.String(), AddItemRequest{
		ProductID:    product.ID.String(),
		SelectedSize: "m",
		Quantity:     2,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Errorf("expected success envelope, got %+v", env)
	}

	var cart domain.Cart
	if err := json.Unmarshal(env.Data, &cart); err != nil {
		t.Fatalf("could not decode cart payload: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Errorf("unexpected cart contents: %+v", cart.Items)
	}
	if cart.Items[0].Product == nil || cart.Items[0].Product.Title == "" {
		t.Errorf("expected joined product fields on line, got %+v", cart.Items[0].Product)
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	f := newCartHandlerFixture()

	product := newCatalogProduct("29.95", "Women", map[domain.Size]int{domain.SizeM: 5})
	f.productRepo.Create(context.Background(), product)

	w := f.do(http.MethodPost, "/api/carts/"+f.cartID.String(), map[string]string{
		"productId":    product.ID.String(),
		"selectedSize": "m",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var cart domain.Cart
	json.Unmarshal(env.Data, &cart)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %+v", cart.Items)
	}
}

func TestAddItemRejectsUnknownSizeValue(t *testing.T) {
	f := newCartHandlerFixture()

	product := newCatalogProduct("29.95", "Women", map[domain.Size]int{domain.SizeM: 5})
	f.productRepo.Create(context.Background(), product)

	w := f.do(http.MethodPost, "/api/carts/"+f.cartID.String(), AddItemRequest{
		ProductID:    product.ID.String(),
		SelectedSize: "xxl",
		Quantity:     1,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for size outside xs..xl, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success {
		t.Errorf("expected failure envelope, got %+v", env)
	}
	if len(env.Data) == 0 {
		t.Error("expected field validation details in data")
	}
}

func TestAddItemInvalidCartID(t *testing.T) {
	f := newCartHandlerFixture()

	w := f.do(http.MethodGet, "/api/carts/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed cart ID, got %d", w.Code)
	}
}

func TestGetCartNotFound(t *testing.T) {
	f := newCartHandlerFixture()

	w := f.do(http.MethodGet, "/api/carts/"+uuid.New().String(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown cart, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Message == "" {
		t.Errorf("expected failure envelope with message, got %+v", env)
	}
}

func TestUpdateQuantityEndpointRespectsStock(t *testing.T) {
	f := newCartHandlerFixture()
	ctx := context.Background()

	product := newCatalogProduct("29.95", "Women", map[domain.Size]int{domain.SizeM: 3})
	f.productRepo.Create(ctx, product)

	f.do(http.MethodPost, "/api/carts/"+f.cartID.String(), AddItemRequest{
		ProductID:    product.ID.String(),
		SelectedSize: "m",
		Quantity:     1,
	})

	w := f.do(http.MethodPut, "/api/carts/"+f.cartID.String(), UpdateQuantityRequest{
		ProductID:    product.ID.String(),
		SelectedSize: "m",
		Quantity:     5,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 updating past stock, got %d", w.Code)
	}

	w = f.do(http.MethodPut, "/api/carts/"+f.cartID.String(), UpdateQuantityRequest{
		ProductID:    product.ID.String(),
		SelectedSize: "m",
		Quantity:     3,
	})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 updating to stock ceiling, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRemoveItemEndpointIsIdempotent(t *testing.T) {
	f := newCartHandlerFixture()
	ctx := context.Background()

	product := newCatalogProduct("29.95", "Women", map[domain.Size]int{domain.SizeM: 5})
	f.productRepo.Create(ctx, product)

	f.do(http.MethodPost, "/api/carts/"+f.cartID.String(), AddItemRequest{
		ProductID:    product.ID.String(),
		SelectedSize: "m",
		Quantity:     1,
	})

	body := RemoveItemRequest{ProductID: product.ID.String()}
	for i := 0; i < 2; i++ {
		w := f.do(http.MethodDelete, "/api/carts/"+f.cartID.String(), body)
		if w.Code != http.StatusOK {
			t.Fatalf("removal attempt %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestProperty_AddItemEndpointRespectsStock(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("the endpoint accepts an add exactly when stock covers it", prop.ForAll(
		func(stock int, quantity int) bool {
			f := newCartHandlerFixture()

			product := newCatalogProduct("19.99", "Men", map[domain.Size]int{domain.SizeL: stock})
			f.productRepo.Create(context.Background(), product)

			w := f.do(http.MethodPost, "/api/carts/"+f.cartID.String(), AddItemRequest{
				ProductID:    product.ID.String(),
				SelectedSize: "l",
				Quantity:     quantity,
			})

			env := decodeEnvelope(t, w)
			if quantity <= stock {
				return w.Code == http.StatusOK && env.Success
			}
			return w.Code == http.StatusBadRequest && !env.Success
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartEndpointMethodRouting(t *testing.T) {
	f := newCartHandlerFixture()

	w := f.do(http.MethodPatch, fmt.Sprintf("/api/carts/%s", f.cartID), nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for PATCH on cart resource, got %d", w.Code)
	}
}
