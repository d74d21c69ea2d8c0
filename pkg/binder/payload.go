package binder

import (
	"bytes"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
)

// maxPayloadSize caps how much of a request body BindPayload will read.
const maxPayloadSize = 1 << 20

// BindPayload decodes a JSON object body into an untyped map without applying
// any struct rules. Unknown fields are kept; the caller validates the result
// against its own schema. Numbers decode as json.Number so large integers keep
// their exact value.
func BindPayload(c echo.Context) (map[string]interface{}, error) {
	req := c.Request()
	defer req.Body.Close()

	body, err := io.ReadAll(io.LimitReader(req.Body, maxPayloadSize+1))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(body) == 0 {
		return nil, errcodes.EmptyRequestBody()
	}
	if !isJSON(req) || len(body) > maxPayloadSize {
		return nil, errcodes.MalformedPayload()
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, errcodes.MalformedPayload()
	}
	// A literal null decodes without error.
	if payload == nil {
		return nil, errcodes.MalformedPayload()
	}
	var trailing interface{}
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, errcodes.MalformedPayload()
	}
	return payload, nil
}
