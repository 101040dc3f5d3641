package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/xeipuuv/gojsonschema"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

// maxPayloadIDs bounds one bulk lookup request.
const maxPayloadIDs = 1000

// Request body schemas. Enumerations come from the domain vocabularies so the two
// cannot drift apart.
var (
	createSessionSchema = mustSchema(objectSchema(
		map[string]any{
			"sessionId":       nonEmptyString(),
			"participantType": enumOf(domain.ParticipantTypes()),
			"participantId":   optionalString(),
			"domain":          optionalString(),
			"version":         optionalString(),
			"sessionMode":     enumOf(domain.SessionModes()),
		},
		"sessionId", "participantType", "sessionMode",
	))

	updateSessionSchema = mustSchema(objectSchema(
		map[string]any{
			"participantType": enumOf(domain.ParticipantTypes()),
			"participantId":   optionalString(),
			"domain":          optionalString(),
		},
		"participantType",
	))

	payloadSchema = mustSchema(objectSchema(payloadProperties(), "payloadId"))

	attachPayloadSchema = mustSchema(objectSchema(
		withProperty(payloadProperties(), "sessionDetails", objectSchema(
			map[string]any{"sessionId": nonEmptyString()},
			"sessionId",
		)),
		"payloadId",
	))

	payloadIDsSchema = mustSchema(objectSchema(
		map[string]any{
			"payload_ids": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": maxPayloadIDs,
				"items":    map[string]any{"type": "string"},
			},
		},
		"payload_ids",
	))
)

func payloadProperties() map[string]any {
	actions := []any{""}
	for _, a := range domain.Actions() {
		actions = append(actions, string(a))
	}
	return map[string]any{
		"payloadId":     nonEmptyString(),
		"messageId":     optionalString(),
		"transactionId": optionalString(),
		"flowId":        optionalString(),
		"action":        map[string]any{"type": "string", "enum": actions},
		"responderId":   optionalString(),
		"requesterId":   optionalString(),
		"requestHeader": optionalString(),
		"jsonRequest":   map[string]any{"type": []string{"object", "null"}},
		"jsonResponse":  map[string]any{"type": []string{"object", "null"}},
		"httpStatus":    map[string]any{"type": []string{"integer", "null"}},
		"sessionId":     optionalString(),
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func withProperty(properties map[string]any, name string, schema any) map[string]any {
	properties[name] = schema
	return properties
}

func nonEmptyString() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func optionalString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func enumOf[T ~string](values []T) map[string]any {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}
	return map[string]any{"type": "string", "enum": enum}
}

func mustSchema(schema map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return s
}

var errInvalidBody = errors.New("invalid request body")

// bindValidated checks the request body against schema and decodes it into dst.
// The returned error is meant for the client.
func bindValidated(c echo.Context, schema *gojsonschema.Schema, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errInvalidBody
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errInvalidBody
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", errInvalidBody, strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}
