package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// lineRequest mirrors the shape of the cart and order payloads
type lineRequest struct {
	ProductID    string `json:"productId" validate:"required,uuid"`
	SelectedSize string `json:"selectedSize" validate:"required,oneof=xs s m l xl"`
	Quantity     int    `json:"quantity" validate:"required,gte=1"`
}

const validProductID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

func decodeLine(t *testing.T, payload map[string]interface{}) error {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var line lineRequest
	return DecodeAndValidate(req, &line)
}

func TestProperty_MissingRequiredFieldsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a payload passes only when every required field is present", prop.ForAll(
		func(includeProduct bool, includeSize bool, includeQuantity bool) bool {
			payload := make(map[string]interface{})
			if includeProduct {
				payload["productId"] = validProductID
			}
			if includeSize {
				payload["selectedSize"] = "m"
			}
			if includeQuantity {
				payload["quantity"] = 2
			}

			err := decodeLine(t, payload)
			if includeProduct && includeSize && includeQuantity {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SizeValueIsRestricted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	valid := map[string]bool{"xs": true, "s": true, "m": true, "l": true, "xl": true}

	properties.Property("only the five catalog sizes pass the oneof check", prop.ForAll(
		func(size string) bool {
			err := decodeLine(t, map[string]interface{}{
				"productId":    validProductID,
				"selectedSize": size,
				"quantity":     1,
			})
			if valid[size] {
				return err == nil
			}
			return err != nil
		},
		gen.OneConstOf("xs", "s", "m", "l", "xl", "xxl", "XL", "medium", "", "xss"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_QuantityMustBePositive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantities below 1 are rejected", prop.ForAll(
		func(quantity int) bool {
			err := decodeLine(t, map[string]interface{}{
				"productId":    validProductID,
				"selectedSize": "l",
				"quantity":     quantity,
			})
			if quantity >= 1 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-10, 10).SuchThat(func(q int) bool { return q != 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrorsIncludesFieldInfo(t *testing.T) {
	err := decodeLine(t, map[string]interface{}{
		"productId":    "not-a-uuid",
		"selectedSize": "xxl",
		"quantity":     0,
	})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErrors := FormatValidationErrors(err)
	if len(validationErrors) == 0 {
		t.Fatal("expected formatted field errors")
	}
	for _, ve := range validationErrors {
		if ve.Field == "" || ve.Message == "" {
			t.Errorf("formatted error missing field or message: %+v", ve)
		}
	}
}
