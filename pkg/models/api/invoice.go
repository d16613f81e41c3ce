package api

import "time"

type BillTo struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

type LineItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type Invoice struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	IssueDate   string     `json:"issueDate"`
	BillTo      BillTo     `json:"billTo"`
	LineItems   []LineItem `json:"lineItems"`
	Notes       string     `json:"notes,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedByID string     `json:"createdById"`
	Total       string     `json:"total"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
}
