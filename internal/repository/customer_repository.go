package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/nishadadilshan/customer-service/internal/model"
)

// CustomerStore defines methods used by service
type CustomerStore interface {
	Insert(ctx context.Context, c *model.CustomerEntity) error
	FindByID(ctx context.Context, id int64) (*model.CustomerEntity, error)
	ScanAll(ctx context.Context) ([]model.CustomerEntity, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	Save(ctx context.Context, c *model.CustomerEntity) error

	// InTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(CustomerStore) error) error
}

// CustomerRepository is the concrete implementation
type CustomerRepository struct {
	DB *sqlx.DB
	tx *sqlx.Tx
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func (r *CustomerRepository) querier() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.DB
}

const customerColumns = `customer_id, name, address, email, status`

// Insert stores a new customer and sets the id assigned by the database.
// Any id already on c is ignored.
func (r *CustomerRepository) Insert(ctx context.Context, c *model.CustomerEntity) error {
	q := r.querier()
	query := q.Rebind(`
        INSERT INTO customers (name, address, email, status)
        VALUES (?, ?, ?, ?)
        RETURNING customer_id
    `)
	err := q.QueryRowxContext(ctx, query, c.Name, c.Address, c.Email, c.Status).Scan(&c.CustomerID)
	return errors.Wrap(err, "insert customer")
}

// FindByID fetches a customer by ID. It returns nil, nil when there is no such row.
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*model.CustomerEntity, error) {
	q := r.querier()
	query := q.Rebind(`SELECT ` + customerColumns + ` FROM customers WHERE customer_id = ?`)

	var c model.CustomerEntity
	if err := sqlx.GetContext(ctx, q, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found
		}
		return nil, errors.Wrapf(err, "find customer %d", id)
	}
	return &c, nil
}

// ScanAll returns every customer ordered by id.
func (r *CustomerRepository) ScanAll(ctx context.Context) ([]model.CustomerEntity, error) {
	customers := []model.CustomerEntity{}
	err := sqlx.SelectContext(ctx, r.querier(), &customers,
		`SELECT `+customerColumns+` FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, errors.Wrap(err, "list customers")
	}
	return customers, nil
}

func (r *CustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	q := r.querier()
	var exists bool
	err := q.QueryRowxContext(ctx,
		q.Rebind(`SELECT EXISTS (SELECT 1 FROM customers WHERE customer_id = ?)`), id,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "check customer %d", id)
	}
	return exists, nil
}

func (r *CustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	q := r.querier()
	_, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM customers WHERE customer_id = ?`), id)
	return errors.Wrapf(err, "delete customer %d", id)
}

// Save overwrites name, address, email and status of an existing row.
func (r *CustomerRepository) Save(ctx context.Context, c *model.CustomerEntity) error {
	q := r.querier()
	query := q.Rebind(`
        UPDATE customers
        SET name = ?, address = ?, email = ?, status = ?
        WHERE customer_id = ?
    `)
	res, err := q.ExecContext(ctx, query, c.Name, c.Address, c.Email, c.Status, c.CustomerID)
	if err != nil {
		return errors.Wrapf(err, "update customer %d", c.CustomerID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "update customer %d", c.CustomerID)
	}
	if n == 0 {
		return errors.Newf("update customer %d: no row updated", c.CustomerID)
	}
	return nil
}

func (r *CustomerRepository) InTx(ctx context.Context, fn func(CustomerStore) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&CustomerRepository{DB: r.DB, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	committed = true
	return nil
}

var _ CustomerStore = (*CustomerRepository)(nil)
