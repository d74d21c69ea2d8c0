package binder

import (
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindPayload(t *testing.T) {
	t.Parallel()

	t.Run("keeps unknown fields and decodes numbers exactly", func(tt *testing.T) {
		c := newContext(`{"isbn":"0691161518","pages":264,"year":9007199254740993,"extra":true}`, echo.MIMEApplicationJSON)
		payload, err := BindPayload(c)
		require.NoError(tt, err)
		assert.Equal(tt, "0691161518", payload["isbn"])
		assert.Equal(tt, json.Number("264"), payload["pages"])
		assert.Equal(tt, json.Number("9007199254740993"), payload["year"])
		assert.Equal(tt, true, payload["extra"])
	})

	t.Run("accepts a charset suffix", func(tt *testing.T) {
		c := newContext(`{}`, echo.MIMEApplicationJSONCharsetUTF8)
		payload, err := BindPayload(c)
		require.NoError(tt, err)
		assert.Empty(tt, payload)
	})

	cases := []struct {
		name    string
		payload string
		mime    string
		want    error
	}{
		{"empty body", "", echo.MIMEApplicationJSON, errcodes.EmptyRequestBody()},
		{"wrong content type", `{"isbn":"1"}`, echo.MIMETextPlain, errcodes.MalformedPayload()},
		{"form content type", `isbn=1`, echo.MIMEApplicationForm, errcodes.MalformedPayload()},
		{"trailing data", `{"isbn":"1"} {"isbn":"2"}`, echo.MIMEApplicationJSON, errcodes.MalformedPayload()},
		{"syntax error", `{"isbn":`, echo.MIMEApplicationJSON, errcodes.MalformedPayload()},
		{"array", `[{"isbn":"1"}]`, echo.MIMEApplicationJSON, errcodes.MalformedPayload()},
		{"string", `"isbn"`, echo.MIMEApplicationJSON, errcodes.MalformedPayload()},
		{"null", `null`, echo.MIMEApplicationJSON, errcodes.MalformedPayload()},
		{"too large", `{"title":"` + strings.Repeat("a", maxPayloadSize) + `"}`, echo.MIMEApplicationJSON, errcodes.MalformedPayload()},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(st *testing.T) {
			c := newContext(tt.payload, tt.mime)
			payload, err := BindPayload(c)
			assert.Nil(st, payload)
			assert.ErrorIs(st, err, tt.want)
		})
	}
}
