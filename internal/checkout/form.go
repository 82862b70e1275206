package checkout

import (
	"net/url"
	"strconv"
	"strings"
)

// supportedCurrencies is the set the provider account is configured to
// charge in.
var supportedCurrencies = map[string]struct{}{
	"USD": {},
	"CAD": {},
	"EUR": {},
	"GBP": {},
}

// Form is one checkout request: a single line item the customer is redirected
// to the provider's hosted page to pay for. Price is in minor currency units.
type Form struct {
	Name        string
	Description string
	Images      []string
	Price       int64
	Currency    string
	Quantity    int64
	MaxQuantity int64
}

// parseForm coerces and validates the urlencoded values. It collects every
// field error rather than stopping at the first, so the caller can return
// them all in one response body.
func parseForm(values url.Values) (*Form, []string) {
	var errs []string
	form := &Form{}

	form.Name = strings.TrimSpace(values.Get("name"))
	if form.Name == "" {
		errs = append(errs, "name is a required field")
	}

	form.Description = strings.TrimSpace(values.Get("description"))
	if form.Description == "" {
		errs = append(errs, "description is a required field")
	}

	if images := values.Get("images"); images != "" {
		form.Images = strings.Split(images, ",")
	}

	if price, ok := parseIntField(values, "price", &errs); ok {
		if price < 0 {
			errs = append(errs, "price cannot be negative")
		}
		form.Price = price
	}

	form.Currency = values.Get("currency")
	if form.Currency == "" {
		errs = append(errs, "currency is a required field")
	} else if _, ok := supportedCurrencies[form.Currency]; !ok {
		errs = append(errs, "invalid currency")
	}

	if quantity, ok := parseIntField(values, "quantity", &errs); ok {
		if quantity < 0 {
			errs = append(errs, "quantity cannot be negative")
		}
		form.Quantity = quantity
	}

	if maxQuantity, ok := parseIntField(values, "maxQuantity", &errs); ok {
		if maxQuantity < 1 {
			errs = append(errs, "maxQuantity cannot be lower than 1")
		}
		form.MaxQuantity = maxQuantity
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return form, nil
}

// parseIntField reads one integer field, recording a required/invalid error
// when absent or unparseable. ok is false when no usable value was read.
func parseIntField(values url.Values, field string, errs *[]string) (int64, bool) {
	raw := values.Get(field)
	if raw == "" {
		*errs = append(*errs, field+" is a required field")
		return 0, false
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*errs = append(*errs, "invalid "+field)
		return 0, false
	}
	return v, true
}
