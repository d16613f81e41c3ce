package adapters

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/pkg/models/api"
	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

func MapDomainInvoiceToApi(inv domain.Invoice, createdBy string) api.Invoice {
	lines := make([]api.LineItem, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		lines = append(lines, api.LineItem{
			Product:  li.Product,
			Quantity: li.Quantity,
			Price:    li.Price.String(),
		})
	}

	return api.Invoice{
		ID:        inv.ID,
		Number:    inv.Number,
		IssueDate: inv.IssueDate,
		BillTo: api.BillTo{
			Name:    inv.BillTo.Name,
			Email:   inv.BillTo.Email,
			Address: inv.BillTo.Address,
		},
		LineItems:   lines,
		Notes:       inv.Notes,
		CreatedBy:   createdBy,
		CreatedByID: inv.CreatedByID,
		Total:       inv.Total().String(),
		CreatedAt:   inv.CreatedAt,
	}
}

func MapApiInvoiceToDomain(inv api.Invoice) (domain.Invoice, error) {
	lines := make([]domain.LineItem, 0, len(inv.LineItems))
	for i, li := range inv.LineItems {
		price, err := decimal.NewFromString(li.Price)
		if err != nil {
			return domain.Invoice{}, fmt.Errorf("line %d: invalid price %q", i+1, li.Price)
		}
		lines = append(lines, domain.LineItem{
			Product:  li.Product,
			Quantity: li.Quantity,
			Price:    price,
		})
	}

	return domain.Invoice{
		ID:        inv.ID,
		Number:    inv.Number,
		IssueDate: inv.IssueDate,
		BillTo: domain.BillTo{
			Name:    inv.BillTo.Name,
			Email:   inv.BillTo.Email,
			Address: inv.BillTo.Address,
		},
		LineItems:   lines,
		Notes:       inv.Notes,
		CreatedByID: inv.CreatedByID,
	}, nil
}

func MapDomainProductToApi(p domain.Product) api.Product {
	return api.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Description: p.Description,
	}
}

func MapApiProductToDomain(p api.Product) (domain.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price %q", p.Price)
	}
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       price,
		Description: p.Description,
	}, nil
}

func MapDomainStatToApi(s domain.PeriodStat) api.PeriodStat {
	return api.PeriodStat{
		Period:          s.Period,
		Count:           s.Count,
		UniqueCustomers: s.UniqueCustomers,
		Total:           s.Total.String(),
	}
}

func MapDomainProfileToApi(p domain.Profile) api.User {
	return api.User{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        string(p.Role),
	}
}
