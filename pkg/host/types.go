package host

// Input is the checkout-function input document.
type Input struct {
	Cart Cart `json:"cart"`
	Shop Shop `json:"shop"`
}

// Cart is the cart section of Input.
type Cart struct {
	Cost           CartCost        `json:"cost"`
	Lines          []CartLine      `json:"lines"`
	BuyerIdentity  *BuyerIdentity  `json:"buyerIdentity,omitempty"`
	DeliveryGroups []DeliveryGroup `json:"deliveryGroups"`
	TotalWeight    *float64        `json:"totalWeight,omitempty"`
}

// CartCost holds the cart totals.
type CartCost struct {
	TotalAmount    Money `json:"totalAmount"`
	SubtotalAmount Money `json:"subtotalAmount"`
}

// Money is a decimal amount encoded as a string.
type Money struct {
	Amount string `json:"amount"`
}

// CartLine is one cart line.
type CartLine struct {
	Quantity int `json:"quantity"`
}

// BuyerIdentity identifies the buyer, when known.
type BuyerIdentity struct {
	Customer *Customer `json:"customer,omitempty"`
}

// Customer is the buying customer.
type Customer struct {
	ID   string   `json:"id,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

// DeliveryGroup is one delivery group of the cart.
type DeliveryGroup struct {
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
}

// DeliveryAddress is a delivery address. Every component is optional.
type DeliveryAddress struct {
	Address1     *string `json:"address1,omitempty"`
	Address2     *string `json:"address2,omitempty"`
	City         *string `json:"city,omitempty"`
	Province     *string `json:"province,omitempty"`
	ProvinceCode *string `json:"provinceCode,omitempty"`
	Country      *string `json:"country,omitempty"`
	CountryCode  *string `json:"countryCode,omitempty"`
	Zip          *string `json:"zip,omitempty"`
}

// Shop carries the rules metafield.
type Shop struct {
	Metafield *Metafield `json:"metafield,omitempty"`
}

// Metafield holds a JSON-encoded rules configuration in Value.
type Metafield struct {
	Value string `json:"value"`
}

// Output is the checkout-function output document.
type Output struct {
	Errors []FunctionError `json:"errors"`
}

// FunctionError is one validation error shown to the buyer.
type FunctionError struct {
	LocalizedMessage string `json:"localizedMessage"`
	Target           string `json:"target"`
}

// TargetCart is the target of every reported error.
const TargetCart = "cart"
