package utils

import (
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingService(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	assert.NoError(t, PingService("http://"+ln.Addr().String(), time.Second))
	assert.Error(t, PingService("::bad", time.Second))
	assert.Error(t, PingService("/relative/path", time.Second))
}

func TestVersionErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/conflict", VersionErrorResponse)

	resp, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body ErrorResponseStruct
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.VersionError)
	assert.False(t, body.Ok)
	assert.Equal(t, "/conflict", body.URL)
}

type sample struct {
	Name  string `validate:"required"`
	Email string `validate:"omitempty,email"`
}

func TestValidationMessages(t *testing.T) {
	err := Validate.Struct(sample{Email: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Email:email, Name:required", ValidationMessages(err))

	assert.NoError(t, Validate.Struct(sample{Name: "x"}))
}
