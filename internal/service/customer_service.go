// internal/service/customer_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nishadadilshan/customer-service/internal/mapper"
	"github.com/nishadadilshan/customer-service/internal/model"
	"github.com/nishadadilshan/customer-service/internal/repository"
)

// CustomerService sequences store calls for the customer resource.
// Absence is reported as a nil model or false; errors are store faults and
// are returned unchanged.
type CustomerService struct {
	Store repository.CustomerStore
	log   *zap.Logger
}

func NewCustomerService(store repository.CustomerStore, log *zap.Logger) *CustomerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerService{
		Store: store,
		log:   log.Named("customer.service"),
	}
}

// Create inserts c and returns it with the id the store assigned.
func (s *CustomerService) Create(ctx context.Context, c model.Customer) (*model.Customer, error) {
	entity := mapper.ToEntity(c)
	if err := s.Store.Insert(ctx, &entity); err != nil {
		return nil, err
	}

	s.log.Debug("customer created", zap.Int64("customer_id", entity.CustomerID))
	created := mapper.ToModel(entity)
	return &created, nil
}

func (s *CustomerService) ListAll(ctx context.Context) ([]model.Customer, error) {
	entities, err := s.Store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.ToModels(entities), nil
}

func (s *CustomerService) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	entity, err := s.Store.FindByID(ctx, id)
	if err != nil || entity == nil {
		return nil, err
	}
	found := mapper.ToModel(*entity)
	return &found, nil
}

// UpdateByID replaces name, address, email and status of customer id.
// Any id carried in c is ignored. It returns nil without touching the store
// when id does not exist.
func (s *CustomerService) UpdateByID(ctx context.Context, id int64, c model.Customer) (*model.Customer, error) {
	var updated *model.Customer

	err := s.Store.InTx(ctx, func(tx repository.CustomerStore) error {
		existing, err := tx.FindByID(ctx, id)
		if err != nil || existing == nil {
			return err
		}

		existing.Name = c.Name
		existing.Address = c.Address
		existing.Email = c.Email
		existing.Status = c.Status

		if err := tx.Save(ctx, existing); err != nil {
			return err
		}

		m := mapper.ToModel(*existing)
		updated = &m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated == nil {
		s.log.Debug("update skipped, customer missing", zap.Int64("customer_id", id))
	}
	return updated, nil
}

// DeleteByID removes customer id and reports whether it existed.
func (s *CustomerService) DeleteByID(ctx context.Context, id int64) (bool, error) {
	deleted := false

	err := s.Store.InTx(ctx, func(tx repository.CustomerStore) error {
		exists, err := tx.ExistsByID(ctx, id)
		if err != nil || !exists {
			return err
		}
		if err := tx.DeleteByID(ctx, id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
