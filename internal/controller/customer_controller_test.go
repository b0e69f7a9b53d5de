package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nishadadilshan/customer-service/internal/controller"
	"github.com/nishadadilshan/customer-service/internal/db/dbtest"
	"github.com/nishadadilshan/customer-service/internal/events"
	"github.com/nishadadilshan/customer-service/internal/model"
	"github.com/nishadadilshan/customer-service/internal/repository"
	"github.com/nishadadilshan/customer-service/internal/service"
)

// --- Mock publisher ---

type RecordingPublisher struct {
	events []events.Event
	err    error
}

func (p *RecordingPublisher) Publish(ctx context.Context, e events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

func newTestRouter(t *testing.T, store repository.CustomerStore, pub events.Publisher) http.Handler {
	t.Helper()
	if store == nil {
		store = repository.NewCustomerRepository(dbtest.New(t))
	}
	svc := service.NewCustomerService(store, zap.NewNop())
	ctrl := controller.NewCustomerController(svc, pub, zap.NewNop())

	r := chi.NewRouter()
	ctrl.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeCustomer(t *testing.T, w *httptest.ResponseRecorder) model.Customer {
	t.Helper()
	var c model.Customer
	require.NoError(t, json.NewDecoder(w.Body).Decode(&c))
	return c
}

var alice = map[string]any{
	"name":    "Alice",
	"address": "1 Main St",
	"email":   "alice@x.com",
	"status":  true,
}

func TestCustomerLifecycle(t *testing.T) {
	pub := &RecordingPublisher{}
	h := newTestRouter(t, nil, pub)

	// create
	w := do(t, h, http.MethodPost, "/api/customer", alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	created := decodeCustomer(t, w)
	require.NotNil(t, created.CustomerID)
	id := *created.CustomerID
	path := "/api/customer/" + strconv.FormatInt(id, 10)
	assert.Equal(t, "Alice", created.Name)

	// list
	w = do(t, h, http.MethodGet, "/api/customer/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []model.Customer
	require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
	assert.Equal(t, []model.Customer{created}, all)

	// get
	w = do(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeCustomer(t, w))

	// update, body id ignored
	w = do(t, h, http.MethodPut, path, map[string]any{
		"customerId": id + 50,
		"name":       "Alicia",
		"email":      "alicia@x.com",
		"status":     false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeCustomer(t, w)
	assert.Equal(t, id, *updated.CustomerID)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Nil(t, updated.Address)

	// delete
	w = do(t, h, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Customer deleted successfully", w.Body.String())

	w = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Len(t, pub.events, 3)
	assert.Equal(t, events.CustomerCreated, pub.events[0].Type)
	assert.Equal(t, events.CustomerUpdated, pub.events[1].Type)
	assert.Equal(t, events.CustomerDeleted, pub.events[2].Type)
	assert.Equal(t, id, pub.events[2].CustomerID)
}

func TestListEmptyIsJSONArray(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	w := do(t, h, http.MethodGet, "/api/customer/all", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestMissingCustomerIs404(t *testing.T) {
	pub := &RecordingPublisher{}
	h := newTestRouter(t, nil, pub)

	cases := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, alice},
		{http.MethodDelete, nil},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			w := do(t, h, tc.method, "/api/customer/42", tc.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), "Customer not found")
		})
	}

	w := do(t, h, http.MethodGet, "/api/customer/all", nil)
	assert.JSONEq(t, "[]", w.Body.String(), "PUT on a missing id must not create a row")
	assert.Empty(t, pub.events)
}

func TestInvalidIDIs400(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	for _, path := range []string{"/api/customer/abc", "/api/customer/1.5", "/api/customer/99999999999999999999"} {
		w := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "invalid customer id\n", w.Body.String(), path)
	}
}

func TestNonPositiveIDIs404(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	for _, id := range []string{"0", "-3"} {
		w := do(t, h, http.MethodGet, "/api/customer/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.Equal(t, "Customer not found: no customer with ID "+id+"\n", w.Body.String())

		w = do(t, h, http.MethodPut, "/api/customer/"+id, alice)
		assert.Equal(t, http.StatusNotFound, w.Code, id)

		w = do(t, h, http.MethodDelete, "/api/customer/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
	}

	w := do(t, h, http.MethodGet, "/api/customer/all", nil)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestNewCustomerControllerNilLogger(t *testing.T) {
	svc := service.NewCustomerService(repository.NewCustomerRepository(dbtest.New(t)), nil)

	assert.NotPanics(t, func() {
		ctrl := controller.NewCustomerController(svc, nil, nil)
		r := chi.NewRouter()
		ctrl.Routes(r)
		w := do(t, r, http.MethodGet, "/api/customer/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateDuplicateEmailIs500(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/customer", alice).Code)

	w := do(t, h, http.MethodPost, "/api/customer", alice)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Error creating customer: "), w.Body.String())
}

func TestCreateValidationFailureIs500(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	w := do(t, h, http.MethodPost, "/api/customer", map[string]any{"name": "", "email": "not-an-email"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "Error creating customer: validation failed"), body)
	assert.Contains(t, body, "name is required")
	assert.Contains(t, body, "email must be a valid email address")
}

func TestCreateNameTooLong(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	w := do(t, h, http.MethodPost, "/api/customer", map[string]any{
		"name":  strings.Repeat("n", 101),
		"email": "long@x.com",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "name must be at most 100 characters")
}

func TestUpdateValidationFailureIs500(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	w := do(t, h, http.MethodPut, "/api/customer/1", map[string]any{"name": "x"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Error updating customer: "))
}

func TestMalformedBodyIs400(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	w := do(t, h, http.MethodPost, "/api/customer", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLegacyRoutes(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	w := do(t, h, http.MethodPost, "/api/customer/create", alice)
	require.Equal(t, http.StatusOK, w.Code)
	id := strconv.FormatInt(*decodeCustomer(t, w).CustomerID, 10)

	w = do(t, h, http.MethodGet, "/api/customer/getCustomers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []model.Customer
	require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
	assert.Len(t, all, 1)

	w = do(t, h, http.MethodGet, "/api/customer/getCustomer/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPut, "/api/customer/update/"+id, map[string]any{"name": "Al", "email": "al@x.com", "status": true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/api/customer/delete/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	h := newTestRouter(t, nil, &RecordingPublisher{err: errors.New("broker down")})

	w := do(t, h, http.MethodPost, "/api/customer", alice)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- store failures map to 500 with the operation prefix ---

type FailingStore struct{ err error }

func (f FailingStore) Insert(context.Context, *model.CustomerEntity) error { return f.err }
func (f FailingStore) FindByID(context.Context, int64) (*model.CustomerEntity, error) {
	return nil, f.err
}
func (f FailingStore) ScanAll(context.Context) ([]model.CustomerEntity, error) { return nil, f.err }
func (f FailingStore) ExistsByID(context.Context, int64) (bool, error)        { return false, f.err }
func (f FailingStore) DeleteByID(context.Context, int64) error                { return f.err }
func (f FailingStore) Save(context.Context, *model.CustomerEntity) error      { return f.err }
func (f FailingStore) InTx(ctx context.Context, fn func(repository.CustomerStore) error) error {
	return fn(f)
}

func TestStoreFailureIs500(t *testing.T) {
	h := newTestRouter(t, FailingStore{err: errors.New("database is down")}, nil)

	cases := []struct {
		method, path, prefix string
		body                 any
	}{
		{http.MethodGet, "/api/customer/all", "Error retrieving customers: ", nil},
		{http.MethodGet, "/api/customer/1", "Error retrieving customer: ", nil},
		{http.MethodPost, "/api/customer", "Error creating customer: ", alice},
		{http.MethodPut, "/api/customer/1", "Error updating customer: ", alice},
		{http.MethodDelete, "/api/customer/1", "Error deleting customer: ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tc.prefix+"database is down\n", w.Body.String())
		})
	}
}
