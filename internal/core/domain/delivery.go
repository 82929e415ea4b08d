package domain

import "time"

type Delivery struct {
	ID           int64     `json:"id"`
	UserID       *int64    `json:"user_id,omitempty"`
	ItemID       *int64    `json:"item_id,omitempty"`
	ItemName     string    `json:"item_name,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Location     string    `json:"location,omitempty"`
	Date         time.Time `json:"date"`
	IsDelivered  bool      `json:"is_delivered"`
}
