package devserver

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

const testJWTSecret = "test-secret"

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenStorage(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("OpenStorage returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a request context carrying a JSON body, plus the
// recorder capturing the response.
func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func setRoomParam(c echo.Context, roomID string) {
	c.SetParamNames("roomId")
	c.SetParamValues(roomID)
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func assertHTTPError(t *testing.T, err error, code int, message string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("code = %d, want %d", he.Code, code)
	}
	if message != "" && he.Message != message {
		t.Fatalf("message = %v, want %q", he.Message, message)
	}
}
