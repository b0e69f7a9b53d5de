// internal/controller/customer_controller.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/nishadadilshan/customer-service/internal/errors"
	"github.com/nishadadilshan/customer-service/internal/events"
	"github.com/nishadadilshan/customer-service/internal/model"
	"github.com/nishadadilshan/customer-service/internal/service"
)

type CustomerController struct {
	CustomerService *service.CustomerService
	Events          events.Publisher
	Validate        *validator.Validate
	log             *zap.Logger
}

func NewCustomerController(svc *service.CustomerService, pub events.Publisher, log *zap.Logger) *CustomerController {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerController{
		CustomerService: svc,
		Events:          pub,
		Validate:        NewValidator(),
		log:             log.Named("customer.controller"),
	}
}

// Routes mounts the customer API under /api/customer, including the
// older verb-style paths the web frontend still calls.
func (c *CustomerController) Routes(r chi.Router) {
	r.Route("/api/customer", func(r chi.Router) {
		r.Get("/all", c.ListCustomers)
		r.Post("/", c.CreateCustomer)
		r.Get("/{id}", c.GetCustomer)
		r.Put("/{id}", c.UpdateCustomer)
		r.Delete("/{id}", c.DeleteCustomer)

		r.Get("/getCustomers", c.ListCustomers)
		r.Get("/getCustomer/{id}", c.GetCustomer)
		r.Post("/create", c.CreateCustomer)
		r.Put("/update/{id}", c.UpdateCustomer)
		r.Delete("/delete/{id}", c.DeleteCustomer)
	})
}

func (c *CustomerController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := c.CustomerService.ListAll(r.Context())
	if err != nil {
		c.fail(w, "Error retrieving customers", err)
		return
	}
	writeJSON(w, customers)
}

func (c *CustomerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	customer, err := c.CustomerService.GetByID(r.Context(), id)
	if err != nil {
		c.fail(w, "Error retrieving customer", err)
		return
	}
	if customer == nil {
		http.Error(w, appErrors.NewCustomerNotFound(id).Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, customer)
}

func (c *CustomerController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body model.Customer
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := c.Validate.Struct(body); err != nil {
		c.fail(w, "Error creating customer", validationError(err))
		return
	}

	customer, err := c.CustomerService.Create(r.Context(), body)
	if err != nil {
		c.fail(w, "Error creating customer", err)
		return
	}

	c.publish(r.Context(), events.CustomerCreated, customer)
	writeJSON(w, customer)
}

// UpdateCustomer replaces every field of the customer named in the path.
// An id in the body is ignored.
func (c *CustomerController) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	var body model.Customer
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := c.Validate.Struct(body); err != nil {
		c.fail(w, "Error updating customer", validationError(err))
		return
	}

	customer, err := c.CustomerService.UpdateByID(r.Context(), id, body)
	if err != nil {
		c.fail(w, "Error updating customer", err)
		return
	}
	if customer == nil {
		http.Error(w, appErrors.NewCustomerNotFound(id).Error(), http.StatusNotFound)
		return
	}

	c.publish(r.Context(), events.CustomerUpdated, customer)
	writeJSON(w, customer)
}

func (c *CustomerController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	deleted, err := c.CustomerService.DeleteByID(r.Context(), id)
	if err != nil {
		c.fail(w, "Error deleting customer", err)
		return
	}
	if !deleted {
		http.Error(w, appErrors.NewCustomerNotFound(id).Error(), http.StatusNotFound)
		return
	}

	c.publishDeleted(r.Context(), id)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Customer deleted successfully"))
}

func customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (c *CustomerController) fail(w http.ResponseWriter, prefix string, err error) {
	c.log.Error(prefix,
		zap.Error(err),
		zap.Bool("constraint_violation", appErrors.IsConstraintViolation(err)),
	)
	http.Error(w, prefix+": "+err.Error(), http.StatusInternalServerError)
}

func (c *CustomerController) publish(ctx context.Context, eventType string, customer *model.Customer) {
	var id int64
	if customer.CustomerID != nil {
		id = *customer.CustomerID
	}
	c.send(ctx, events.Event{Type: eventType, CustomerID: id, Customer: customer})
}

func (c *CustomerController) publishDeleted(ctx context.Context, id int64) {
	c.send(ctx, events.Event{Type: events.CustomerDeleted, CustomerID: id})
}

// send never fails the request: the row is already committed.
func (c *CustomerController) send(ctx context.Context, e events.Event) {
	if err := c.Events.Publish(ctx, e); err != nil {
		c.log.Warn("failed to publish customer event",
			zap.String("type", e.Type),
			zap.Int64("customer_id", e.CustomerID),
			zap.Error(err),
		)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
