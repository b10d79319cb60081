package checkout

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
)

// ShippingDetails is the checkout form payload. Kennitala is the Icelandic
// national identifier.
type ShippingDetails struct {
	Email          string  `json:"email" validate:"required,email"`
	FirstName      string  `json:"firstName" validate:"required"`
	LastName       string  `json:"lastName" validate:"required"`
	Kennitala      string  `json:"kennitala" validate:"required,len=10,numeric"`
	Address        string  `json:"address" validate:"required"`
	Apartment      *string `json:"apartment,omitempty"`
	City           string  `json:"city" validate:"required"`
	SaveInfo       bool    `json:"saveInfo"`
	MarketingOptIn bool    `json:"marketingOptIn"`
}

var shippingValidate = newShippingValidator()

func newShippingValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidateShipping checks the form and returns a field-keyed message map on
// failure. Messages are the storefront's Icelandic user-facing strings.
func ValidateShipping(details ShippingDetails) error {
	err := shippingValidate.Struct(details)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	fields := map[string]string{}
	for _, fieldErr := range errs {
		fields[fieldErr.Field()] = shippingMessage(fieldErr)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(fields)
}

func shippingMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "email":
		return "Netfang er ógilt"
	case "firstName":
		return "Fornafn vantar"
	case "lastName":
		return "Eftirnafn vantar"
	case "kennitala":
		return "Kennitala verður að vera 10 tölustafir"
	case "address":
		return "Heimilisfang vantar"
	case "city":
		return "Staður vantar"
	}
	return "Ógilt gildi"
}
