package models

import "time"

// Purchase groups devices bought under a single purchase order.
type Purchase struct {
	ID               int64     `json:"purchase_id"`
	PurchaseOrder    *string   `json:"purchase_order,omitempty"`
	PurchaseDate     *Date     `json:"purchase_date,omitempty"`
	Vendor           *string   `json:"vendor,omitempty"`
	TotalAmount      *float64  `json:"total_amount,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
}

// PurchaseBrief is the nested purchase projection used in device details.
type PurchaseBrief struct {
	ID            int64   `json:"purchase_id"`
	PurchaseOrder *string `json:"purchase_order,omitempty"`
	PurchaseDate  *Date   `json:"purchase_date,omitempty"`
	Vendor        *string `json:"vendor,omitempty"`
}

// PurchaseDetail is a purchase plus the devices bought under it.
type PurchaseDetail struct {
	Purchase
	Devices []DeviceBrief `json:"devices"`
}

// CreatePurchaseRequest represents the request body for creating a purchase.
type CreatePurchaseRequest struct {
	PurchaseOrder *string  `json:"purchase_order,omitempty" validate:"omitempty,max=50"`
	PurchaseDate  *Date    `json:"purchase_date,omitempty"`
	Vendor        *string  `json:"vendor,omitempty" validate:"omitempty,max=100"`
	TotalAmount   *float64 `json:"total_amount,omitempty" validate:"omitempty,min=0"`
	Notes         *string  `json:"notes,omitempty"`
}

// UpdatePurchaseRequest represents a partial purchase update.
type UpdatePurchaseRequest struct {
	PurchaseOrder Optional[string]  `json:"purchase_order"`
	PurchaseDate  Optional[Date]    `json:"purchase_date"`
	Vendor        Optional[string]  `json:"vendor"`
	TotalAmount   Optional[float64] `json:"total_amount"`
	Notes         Optional[string]  `json:"notes"`
}
