package models

// Address is a delivery address.
type Address struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	Street        string `json:"street"`
	DetailAddress string `json:"detail_address"`
	IsDefault     bool   `json:"is_default"`
}
