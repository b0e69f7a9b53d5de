// internal/mapper/customer_mapper.go
package mapper

import (
	"github.com/samber/lo"

	"github.com/nishadadilshan/customer-service/internal/model"
)

// ToModel converts a stored row into its wire representation.
func ToModel(e model.CustomerEntity) model.Customer {
	m := model.Customer{
		Name:    e.Name,
		Address: cloneString(e.Address),
		Email:   e.Email,
		Status:  e.Status,
	}
	if e.CustomerID != 0 {
		m.CustomerID = lo.ToPtr(e.CustomerID)
	}
	return m
}

// ToEntity converts a wire model into a row. The id is carried over when
// present so update paths can reuse the same conversion.
func ToEntity(m model.Customer) model.CustomerEntity {
	return model.CustomerEntity{
		CustomerID: lo.FromPtr(m.CustomerID),
		Name:       m.Name,
		Address:    cloneString(m.Address),
		Email:      m.Email,
		Status:     m.Status,
	}
}

// ToModels maps rows in order. The result is never nil.
func ToModels(entities []model.CustomerEntity) []model.Customer {
	if len(entities) == 0 {
		return []model.Customer{}
	}
	return lo.Map(entities, func(e model.CustomerEntity, _ int) model.Customer {
		return ToModel(e)
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return lo.ToPtr(*s)
}
