package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/graph"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	admin  = &domain.User{ID: 1, Email: "root@example.com", Admin: true, EmailConfirmed: true}
	member = &domain.User{ID: 2, Email: "member@example.com", EmailConfirmed: true}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

type employerFixture struct {
	svc       *EmployerService
	employers *stubEmployerRepo
	relations *stubRelationRepo
	tx        *stubTx
}

func newEmployerFixture() *employerFixture {
	employers, relations := newStubStores()
	tx := &stubTx{}
	return &employerFixture{
		svc:       NewEmployerService(employers, relations, tx, discardLogger),
		employers: employers,
		relations: relations,
		tx:        tx,
	}
}

func (f *employerFixture) create(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := f.svc.CreateEmployer(context.Background(), admin, ports.CreateEmployerInput{
			Name:                name,
			HeadquartersAddress: name + " Street 1",
			StartDate:           date(2000, 1, 1),
		})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
}

func (f *employerFixture) relate(t *testing.T, parent, child string) {
	t.Helper()
	if err := f.svc.AddRelation(context.Background(), admin, ports.RelationInput{ParentName: parent, ChildName: child}); err != nil {
		t.Fatalf("relate %s -> %s: %v", parent, child, err)
	}
}

// ---------------------------------------------------------------------------
// Authorization
// ---------------------------------------------------------------------------

func TestEmployerService_NonAdminIsForbidden(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "Acme")
	ctx := context.Background()

	if _, err := f.svc.CreateEmployer(ctx, member, ports.CreateEmployerInput{Name: "X", HeadquartersAddress: "Y"}); err != domain.ErrForbidden {
		t.Fatalf("create: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.EditEmployer(ctx, member, ports.EditEmployerInput{Name: "Acme", Description: strPtr("d")}); err != domain.ErrForbidden {
		t.Fatalf("edit: expected ErrForbidden, got %v", err)
	}
	if err := f.svc.DeleteEmployer(ctx, member, "Acme"); err != domain.ErrForbidden {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
	if err := f.svc.AddRelation(ctx, nil, ports.RelationInput{ParentName: "Acme", ChildName: "Acme"}); err != domain.ErrForbidden {
		t.Fatalf("relate: expected ErrForbidden for missing actor, got %v", err)
	}
	if len(f.employers.byID) != 1 {
		t.Fatalf("forbidden calls must not touch the store")
	}
}

// ---------------------------------------------------------------------------
// CreateEmployer
// ---------------------------------------------------------------------------

func TestEmployerService_Create_Success(t *testing.T) {
	f := newEmployerFixture()

	e, err := f.svc.CreateEmployer(context.Background(), admin, ports.CreateEmployerInput{
		Name:                "  Acme ",
		HeadquartersAddress: "1 Road",
		Description:         "Widgets",
		StartDate:           date(1990, 5, 1),
	})
	if err != nil {
		t.Fatalf("CreateEmployer returned error: %v", err)
	}
	if e.ID == 0 || e.Name != "Acme" || !e.Active() {
		t.Fatalf("unexpected employer: %+v", e)
	}
}

func TestEmployerService_Create_DuplicateName(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "Acme")

	_, err := f.svc.CreateEmployer(context.Background(), admin, ports.CreateEmployerInput{
		Name: "Acme", HeadquartersAddress: "elsewhere", StartDate: date(2000, 1, 1),
	})
	if err != domain.ErrEmployerExists {
		t.Fatalf("expected ErrEmployerExists, got %v", err)
	}
}

func TestEmployerService_Create_Validation(t *testing.T) {
	f := newEmployerFixture()

	_, err := f.svc.CreateEmployer(context.Background(), admin, ports.CreateEmployerInput{Name: " ", HeadquartersAddress: "x"})
	if err != domain.ErrInvalidEmployer {
		t.Fatalf("expected ErrInvalidEmployer, got %v", err)
	}

	_, err = f.svc.CreateEmployer(context.Background(), admin, ports.CreateEmployerInput{
		Name: "Late", HeadquartersAddress: "x", StartDate: date(2010, 1, 1), EndDate: timePtr(date(2009, 1, 1)),
	})
	if err != domain.ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// EditEmployer
// ---------------------------------------------------------------------------

func TestEmployerService_Edit_PartialUpdate(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "Acme")

	changed, err := f.svc.EditEmployer(context.Background(), admin, ports.EditEmployerInput{
		Name:        "Acme",
		Description: strPtr("Now with gadgets"),
		EndDate:     timePtr(date(2020, 6, 30)),
	})
	if err != nil {
		t.Fatalf("EditEmployer returned error: %v", err)
	}
	if !changed {
		t.Fatalf("expected change to be reported")
	}

	got, _ := f.employers.FindByName(context.Background(), "Acme")
	if got.Description != "Now with gadgets" || got.EndDate == nil || !got.EndDate.Equal(date(2020, 6, 30)) {
		t.Fatalf("edit not applied: %+v", got)
	}
	if got.HeadquartersAddress != "Acme Street 1" {
		t.Fatalf("unsupplied field must be kept, got %q", got.HeadquartersAddress)
	}
}

func TestEmployerService_Edit_NoChange(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "Acme")

	changed, err := f.svc.EditEmployer(context.Background(), admin, ports.EditEmployerInput{
		Name:                "Acme",
		HeadquartersAddress: strPtr("Acme Street 1"),
		Description:         strPtr(""),
		StartDate:           timePtr(date(2000, 1, 1)),
	})
	if err != nil {
		t.Fatalf("EditEmployer returned error: %v", err)
	}
	if changed {
		t.Fatalf("identical and empty values must not count as a change")
	}
	if f.employers.updates != 0 {
		t.Fatalf("expected no write, got %d updates", f.employers.updates)
	}
}

func TestEmployerService_Edit_NotFound(t *testing.T) {
	f := newEmployerFixture()

	_, err := f.svc.EditEmployer(context.Background(), admin, ports.EditEmployerInput{Name: "Ghost", Description: strPtr("x")})
	if err != domain.ErrEmployerNotFound {
		t.Fatalf("expected ErrEmployerNotFound, got %v", err)
	}
}

func TestEmployerService_Edit_InvalidDates(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "Acme")

	_, err := f.svc.EditEmployer(context.Background(), admin, ports.EditEmployerInput{Name: "Acme", EndDate: timePtr(date(1999, 1, 1))})
	if err != domain.ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if f.employers.updates != 0 {
		t.Fatalf("invalid edit must not be written")
	}
}

// ---------------------------------------------------------------------------
// DeleteEmployer
// ---------------------------------------------------------------------------

func TestEmployerService_Delete_WithChildrenRejected(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "Parent", "Child")
	f.relate(t, "Parent", "Child")

	if err := f.svc.DeleteEmployer(context.Background(), admin, "Parent"); err != domain.ErrEmployerHasChildren {
		t.Fatalf("expected ErrEmployerHasChildren, got %v", err)
	}
	if len(f.employers.byID) != 2 {
		t.Fatalf("employer must survive a rejected delete")
	}
}

func TestEmployerService_Delete_LeafSucceeds(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "Parent", "Child")
	f.relate(t, "Parent", "Child")

	if err := f.svc.DeleteEmployer(context.Background(), admin, "Child"); err != nil {
		t.Fatalf("DeleteEmployer returned error: %v", err)
	}
	if _, err := f.employers.FindByName(context.Background(), "Child"); err != domain.ErrEmployerNotFound {
		t.Fatalf("child still present")
	}
	if len(f.relations.edges) != 0 {
		t.Fatalf("edge to deleted child must be gone, have %v", f.relations.edges)
	}
	if err := f.svc.DeleteEmployer(context.Background(), admin, "Parent"); err != nil {
		t.Fatalf("parent without children should now be deletable: %v", err)
	}
}

func TestEmployerService_Delete_NotFound(t *testing.T) {
	f := newEmployerFixture()

	if err := f.svc.DeleteEmployer(context.Background(), admin, "Ghost"); err != domain.ErrEmployerNotFound {
		t.Fatalf("expected ErrEmployerNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// AddRelation
// ---------------------------------------------------------------------------

func TestEmployerService_AddRelation_Duplicate(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "A", "B")
	f.relate(t, "A", "B")

	err := f.svc.AddRelation(context.Background(), admin, ports.RelationInput{ParentName: "A", ChildName: "B"})
	if err != domain.ErrRelationExists {
		t.Fatalf("expected ErrRelationExists, got %v", err)
	}

	// The reverse direction is a different edge.
	if err := f.svc.AddRelation(context.Background(), admin, ports.RelationInput{ParentName: "B", ChildName: "A"}); err != nil {
		t.Fatalf("reverse edge should be accepted: %v", err)
	}
	if len(f.relations.edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(f.relations.edges))
	}
}

func TestEmployerService_AddRelation_UnknownEndpoint(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "A")

	for _, in := range []ports.RelationInput{
		{ParentName: "A", ChildName: "Ghost"},
		{ParentName: "Ghost", ChildName: "A"},
	} {
		if err := f.svc.AddRelation(context.Background(), admin, in); err != domain.ErrRelationEndpointNotFound {
			t.Fatalf("%+v: expected ErrRelationEndpointNotFound, got %v", in, err)
		}
	}
}

func TestEmployerService_AddRelation_Self(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "A")

	if err := f.svc.AddRelation(context.Background(), admin, ports.RelationInput{ParentName: "A", ChildName: "A"}); err != domain.ErrSelfRelation {
		t.Fatalf("expected ErrSelfRelation, got %v", err)
	}
}

func TestEmployerService_AddRelation_StoreError(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "A", "B")
	f.relations.addErr = errors.New("db down")

	if err := f.svc.AddRelation(context.Background(), admin, ports.RelationInput{ParentName: "A", ChildName: "B"}); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}

// ---------------------------------------------------------------------------
// ListEmployers / Visualize
// ---------------------------------------------------------------------------

func TestEmployerService_ListEmployers_TruncatesDescriptions(t *testing.T) {
	f := newEmployerFixture()
	ctx := context.Background()
	_, _ = f.svc.CreateEmployer(ctx, admin, ports.CreateEmployerInput{
		Name: "Long", HeadquartersAddress: "x", StartDate: date(2000, 1, 1), Description: strings.Repeat("z", 80),
	})
	f.create(t, "Empty")

	list, err := f.svc.ListEmployers(ctx)
	if err != nil {
		t.Fatalf("ListEmployers returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 employers, got %d", len(list))
	}
	if list[0].Name != "Empty" || list[0].Description != graph.NoDescription {
		t.Fatalf("unexpected first summary: %+v", list[0])
	}
	if list[1].Description != strings.Repeat("z", 50)+"..." {
		t.Fatalf("expected 50-char truncation, got %q", list[1].Description)
	}
	if f.tx.readOnly != 1 {
		t.Fatalf("listing should use a read-only unit of work")
	}
}

func TestEmployerService_Visualize_Chain(t *testing.T) {
	f := newEmployerFixture()
	f.create(t, "A", "B", "C", "Unrelated")
	f.relate(t, "A", "B")
	f.relate(t, "B", "C")

	root, g, err := f.svc.Visualize(context.Background(), "B")
	if err != nil {
		t.Fatalf("Visualize returned error: %v", err)
	}
	if root.Name != "B" {
		t.Fatalf("unexpected root %+v", root)
	}

	names := map[string]bool{}
	for _, n := range g.Nodes {
		names[n.Name] = true
	}
	if len(g.Nodes) != 3 || !names["A"] || !names["B"] || !names["C"] {
		t.Fatalf("unexpected nodes: %+v", g.Nodes)
	}
	if g.Nodes[0].Name != "B" || g.Nodes[0].Shape != "diamond" {
		t.Fatalf("root must come first with hints: %+v", g.Nodes[0])
	}

	edges := map[string]bool{}
	for _, e := range g.Edges {
		edges[e.FromName+"->"+e.ToName] = true
	}
	if len(g.Edges) != 2 || !edges["A->B"] || !edges["B->C"] {
		t.Fatalf("unexpected edges: %+v", g.Edges)
	}
}

func TestEmployerService_Visualize_NotFound(t *testing.T) {
	f := newEmployerFixture()

	if _, _, err := f.svc.Visualize(context.Background(), "Ghost"); err != domain.ErrEmployerNotFound {
		t.Fatalf("expected ErrEmployerNotFound, got %v", err)
	}
}
