package patient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/hospital/internal/platform/apperr"
	"github.com/ehr/hospital/internal/platform/auth"
	"github.com/ehr/hospital/internal/platform/validation"
)

func newTestHandler() (*Handler, *Service, *echo.Echo) {
	svc := newTestService()
	e := echo.New()
	e.Validator = validation.New()
	return NewHandler(svc), svc, e
}

func asUser(req *http.Request, username string, roles ...string) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), auth.NewPrincipal(username, roles)))
}

func TestHandler_Create(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"name":"Ana Costa","national_id":"10987654321","birth_date":"1990-01-02T00:00:00Z","clinical_history":"none"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_Create_Invalid(t *testing.T) {
	h, _, e := newTestHandler()

	future := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"name":"Ana","national_id":"12AB","birth_date":"` + future + `","clinical_history":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Create(c)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
	for _, field := range []string{"national_id", "birth_date"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestHandler_Get_Ownership(t *testing.T) {
	h, svc, e := newTestHandler()
	p, _ := svc.Create(context.Background(), sampleRequest(), "maria")
	id := strconv.FormatInt(p.ID, 10)

	tests := []struct {
		name    string
		user    string
		roles   []string
		wantErr error
	}{
		{"owner", "maria", []string{"PACIENTE"}, nil},
		{"other patient", "joao", []string{"PACIENTE"}, auth.ErrForbidden},
		{"doctor", "dr.silva", []string{"MEDICO"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodGet, "/", nil), tt.user, tt.roles...)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(id)

			err := h.Get(c)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestHandler_Get_BadID(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	var he *echo.HTTPError
	if err := h.Get(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, svc, e := newTestHandler()
	p, _ := svc.Create(context.Background(), sampleRequest(), "")

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(p.ID, 10))

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
