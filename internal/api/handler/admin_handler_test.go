package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

func TestAdminHandler_Overview(t *testing.T) {
	stub := &stubAdminService{overview: ports.Overview{Employers: 3, Relations: 2, Users: 5, Admins: 1}}
	e, c, rec := newContext(http.MethodGet, "/admin", "", adminUser)

	serve(e, c, NewAdminHandler(stub).Overview)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp overviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp != (overviewResponse{Employers: 3, Relations: 2, Users: 5, Admins: 1}) {
		t.Fatalf("unexpected overview: %+v", resp)
	}
}

func TestAdminHandler_Overview_Forbidden(t *testing.T) {
	_, c, _ := newContext(http.MethodGet, "/admin", "", memberUser)

	err := NewAdminHandler(&stubAdminService{}).Overview(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAdminHandler_AddAdmin(t *testing.T) {
	stub := &stubAdminService{}
	h := NewAdminHandler(stub)

	e, c, rec := newContext(http.MethodPost, "/add_admin", `{"email":"member@example.com"}`, adminUser)
	serve(e, c, h.AddAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(stub.granted) != 1 || stub.granted[0] != "member@example.com" {
		t.Fatalf("unexpected grants: %v", stub.granted)
	}

	stub.grantErr = domain.ErrUserNotFound
	e, c, rec = newContext(http.MethodPost, "/add_admin", `{"email":"ghost@example.com"}`, adminUser)
	serve(e, c, h.AddAdmin)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "User does not exist" {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	e, c, rec = newContext(http.MethodPost, "/add_admin", `{"email":"not-an-email"}`, adminUser)
	serve(e, c, h.AddAdmin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
