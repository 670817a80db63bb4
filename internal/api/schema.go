package api

import (
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

const createOrderSchema = `{
  "type": "object",
  "required": ["total"],
  "properties": {
    "total": {"type": ["number", "string"]},
    "currency": {"type": ["string", "null"]},
    "cart": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["name", "price"],
        "properties": {
          "name": {"type": "string"},
          "sku": {"type": ["string", "null"]},
          "quantity": {"type": ["integer", "null"]},
          "price": {"type": ["number", "string"]},
          "total": {"type": ["number", "string", "null"]}
        }
      }
    },
    "customerInfo": {
      "type": ["object", "null"],
      "properties": {
        "name": {"type": ["string", "null"]},
        "email": {"type": ["string", "null"]},
        "phone": {"type": ["string", "null"]},
        "address": {"type": ["string", "null"]}
      }
    }
  }
}`

const captureOrderSchema = `{
  "type": "object",
  "required": ["orderID"],
  "properties": {
    "orderID": {"type": "string", "minLength": 1}
  }
}`

// bodySchema validates request bodies before they are decoded.
type bodySchema struct {
	schema *gojsonschema.Schema
}

func mustCompileSchema(source string) bodySchema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("gojsonschema.NewSchema: %v", err))
	}
	return bodySchema{schema: schema}
}

var (
	createOrderBody  = mustCompileSchema(createOrderSchema)
	captureOrderBody = mustCompileSchema(captureOrderSchema)
)

func (s bodySchema) Validate(body []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return domain.NewValidationError("body", "malformed JSON")
	}

	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	field := first.Field()
	if field == "(root)" {
		field = "body"
	}

	return domain.NewValidationError(field, first.Description())
}
