// Package validation checks outgoing REST payloads against JSON schemas
// before they are sent to the storefront services.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"vascomart-client/internal/common/errors"
)

const orderRequestSchema = `{
	"type": "object",
	"required": ["products"],
	"properties": {
		"products": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["productId", "quantity"],
				"properties": {
					"productId": {"type": "integer", "minimum": 1},
					"quantity": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`

const productCreateSchema = `{
	"type": "object",
	"required": ["name", "price", "quantity"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"price": {"type": "number", "minimum": 0},
		"quantity": {"type": "integer", "minimum": 0}
	}
}`

var (
	orderLoader   = gojsonschema.NewStringLoader(orderRequestSchema)
	productLoader = gojsonschema.NewStringLoader(productCreateSchema)
)

// ValidateOrderRequest validates an order-placement payload.
func ValidateOrderRequest(payload []byte) error {
	return validate(orderLoader, payload)
}

// ValidateProductCreate validates a product-creation payload.
func ValidateProductCreate(payload []byte) error {
	return validate(productLoader, payload)
}

func validate(schema gojsonschema.JSONLoader, payload []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.NewValidationFailedError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return errors.NewValidationFailedError(strings.Join(msgs, "; "))
}
