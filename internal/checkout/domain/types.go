package domain

// Summary is the header of the cart screen after it opened.
type Summary struct {
	OrderID       string `json:"orderId,omitempty"`
	ItemCount     int    `json:"itemCount"`
	TotalPay      string `json:"totalPay"`
	PickupAddress string `json:"pickupAddress"`
}

// Payment is what the payment step receives.
type Payment struct {
	TotalPay      string `json:"totalPay"`
	PickupAddress string `json:"pickupAddress"`
}
