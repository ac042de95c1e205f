package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFrom(t *testing.T) {
	base := Validation("content_too_short", "Content too short")
	wrapped := fmt.Errorf("validate: %w", base.Wrap(errors.New("49 characters")))

	got := From(wrapped)
	if got.Code != "content_too_short" || got.Status != http.StatusBadRequest {
		t.Errorf("From() = %+v, want content_too_short/400", got)
	}

	unknown := From(errors.New("db exploded"))
	if unknown.Code != "server_error" || unknown.Status != http.StatusInternalServerError {
		t.Errorf("From(unknown) = %+v, want server_error/500", unknown)
	}
	if !strings.Contains(unknown.Error(), "db exploded") {
		t.Errorf("cause missing from Error(): %q", unknown.Error())
	}
}

func TestRespondHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, errors.New("secret stack detail"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret stack detail") {
		t.Errorf("cause leaked to client: %s", w.Body.String())
	}
	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "server_error" || len(body.Solutions) == 0 {
		t.Errorf("unexpected body: %+v", body)
	}
	if len(c.Errors) != 1 {
		t.Errorf("expected error recorded on context, got %d", len(c.Errors))
	}
}

func TestBodyOmitsEmptySolutions(t *testing.T) {
	raw, err := json.Marshal(Unauthorized("invalid_credentials", "bad").Body())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "solutions") {
		t.Errorf("solutions should be omitted: %s", raw)
	}
}
