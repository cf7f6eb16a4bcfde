package record

// Field paths understood by Resolve.
const (
	PathCartTotal       = "cart.total"
	PathCartSubtotal    = "cart.subtotal"
	PathCartQuantity    = "cart.quantity"
	PathCartTotalWeight = "cart.total_weight"
	PathCustomerTags    = "customer.tags"
	PathAddress1        = "shipping_address.address1"
	PathAddress2        = "shipping_address.address2"
	PathCity            = "shipping_address.city"
	PathProvince        = "shipping_address.province"
	PathProvinceCode    = "shipping_address.province_code"
	PathCountry         = "shipping_address.country"
	PathCountryCode     = "shipping_address.country_code"
	PathZip             = "shipping_address.zip"
)

var pathKinds = map[string]Kind{
	PathCartTotal:       KindNumber,
	PathCartSubtotal:    KindNumber,
	PathCartQuantity:    KindNumber,
	PathCartTotalWeight: KindNumber,
	PathCustomerTags:    KindStringArray,
	PathAddress1:        KindString,
	PathAddress2:        KindString,
	PathCity:            KindString,
	PathProvince:        KindString,
	PathProvinceCode:    KindString,
	PathCountry:         KindString,
	PathCountryCode:     KindString,
	PathZip:             KindString,
}

// Paths returns every resolvable path in a stable order.
func Paths() []string {
	return []string{
		PathCartTotal,
		PathCartSubtotal,
		PathCartQuantity,
		PathCartTotalWeight,
		PathCustomerTags,
		PathAddress1,
		PathAddress2,
		PathCity,
		PathProvince,
		PathProvinceCode,
		PathCountry,
		PathCountryCode,
		PathZip,
	}
}

// KindOf reports the variant a path resolves to, independent of any record.
func KindOf(path string) (Kind, bool) {
	k, ok := pathKinds[path]
	return k, ok
}

// Resolve looks up path in rec. The second result is false for unknown
// paths and for a nil record.
func Resolve(path string, rec *Record) (FieldValue, bool) {
	if rec == nil {
		return FieldValue{}, false
	}

	switch path {
	case PathCartTotal:
		return Number(rec.Total), true
	case PathCartSubtotal:
		return Number(rec.Subtotal), true
	case PathCartQuantity:
		return Number(float64(rec.Quantity)), true
	case PathCartTotalWeight:
		return Number(rec.TotalWeight), true
	case PathCustomerTags:
		return StringArray(rec.CustomerTags), true
	case PathAddress1:
		return String(rec.ShippingAddress.Address1), true
	case PathAddress2:
		return String(rec.ShippingAddress.Address2), true
	case PathCity:
		return String(rec.ShippingAddress.City), true
	case PathProvince:
		return String(rec.ShippingAddress.Province), true
	case PathProvinceCode:
		return String(rec.ShippingAddress.ProvinceCode), true
	case PathCountry:
		return String(rec.ShippingAddress.Country), true
	case PathCountryCode:
		return String(rec.ShippingAddress.CountryCode), true
	case PathZip:
		return String(rec.ShippingAddress.Zip), true
	}
	return FieldValue{}, false
}
