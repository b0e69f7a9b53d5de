// internal/model/customer.go
package model

// Customer is the wire-facing representation exchanged with HTTP clients.
// CustomerID is nil until the store has assigned one.
type Customer struct {
	CustomerID *int64  `json:"customerId"`
	Name       string  `json:"name" validate:"required,max=100"`
	Address    *string `json:"address" validate:"omitempty,max=255"`
	Email      string  `json:"email" validate:"required,email,max=150"`
	Status     bool    `json:"status"`
}

// CustomerEntity is the row stored in the customers table.
// A zero CustomerID means the row has not been inserted yet.
type CustomerEntity struct {
	CustomerID int64   `db:"customer_id"`
	Name       string  `db:"name"`
	Address    *string `db:"address"`
	Email      string  `db:"email"`
	Status     bool    `db:"status"`
}
