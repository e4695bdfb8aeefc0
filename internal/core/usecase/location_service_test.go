package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type memLocationStore struct {
	locations map[uint]domain.Location
	nextID    uint
}

func newMemLocationStore() *memLocationStore {
	return &memLocationStore{locations: make(map[uint]domain.Location)}
}

func (m *memLocationStore) Create(_ context.Context, loc domain.Location, _ domain.MutationMeta) (domain.Location, error) {
	m.nextID++
	loc.ID = m.nextID
	m.locations[loc.ID] = loc
	return loc, nil
}

func (m *memLocationStore) Update(_ context.Context, loc domain.Location, _ domain.MutationMeta) (domain.Location, error) {
	if _, ok := m.locations[loc.ID]; !ok {
		return domain.Location{}, domain.ErrNotFound
	}
	m.locations[loc.ID] = loc
	return loc, nil
}

func (m *memLocationStore) Delete(_ context.Context, id uint, _ domain.MutationMeta) (bool, error) {
	if _, ok := m.locations[id]; !ok {
		return false, nil
	}
	delete(m.locations, id)
	return true, nil
}

func (m *memLocationStore) Get(_ context.Context, id uint) (domain.Location, error) {
	loc, ok := m.locations[id]
	if !ok {
		return domain.Location{}, domain.ErrNotFound
	}
	return loc, nil
}

func (m *memLocationStore) ListAll(_ context.Context) ([]domain.Location, error) {
	out := make([]domain.Location, 0, len(m.locations))
	for _, loc := range m.locations {
		out = append(out, loc)
	}
	return out, nil
}

func (m *memLocationStore) HasChildren(_ context.Context, id uint) (bool, error) {
	for _, loc := range m.locations {
		if loc.ParentID != nil && *loc.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

// stubEmployeeCounter satisfies ports.EmployeeRepository for location
// tests; only CountByLocation matters.
type stubEmployeeCounter struct {
	byLocation map[uint]int64
}

func (s *stubEmployeeCounter) Create(_ context.Context, emp domain.Employee, _ domain.MutationMeta) (domain.Employee, error) {
	return emp, nil
}

func (s *stubEmployeeCounter) Update(_ context.Context, emp domain.Employee, _ domain.MutationMeta) (domain.Employee, error) {
	return emp, nil
}

func (s *stubEmployeeCounter) Delete(context.Context, uint, domain.MutationMeta) (bool, error) {
	return false, nil
}

func (s *stubEmployeeCounter) Get(context.Context, uint) (domain.Employee, error) {
	return domain.Employee{}, domain.ErrNotFound
}

func (s *stubEmployeeCounter) List(context.Context, domain.EmployeeFilter) ([]domain.Employee, int64, error) {
	return nil, 0, nil
}

func (s *stubEmployeeCounter) CountByLocation(_ context.Context, locationID uint) (int64, error) {
	return s.byLocation[locationID], nil
}

func newTestLocationService() (*LocationService, *memLocationStore, *stubEmployeeCounter) {
	store := newMemLocationStore()
	emps := &stubEmployeeCounter{byLocation: make(map[uint]int64)}
	return NewLocationService(store, emps), store, emps
}

func seedLocation(t *testing.T, svc *LocationService, name string, parentID *uint) domain.Location {
	t.Helper()
	loc, err := svc.Create(context.Background(), domain.Location{
		Name:     name,
		Kind:     domain.LocationClinic,
		ParentID: parentID,
		Active:   true,
	}, domain.MutationMeta{Actor: "test"})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return loc
}

func TestLocationCreateRejectsMissingParent(t *testing.T) {
	svc, _, _ := newTestLocationService()

	missing := uint(99)
	_, err := svc.Create(context.Background(), domain.Location{
		Name:     "Branch",
		Kind:     domain.LocationClinic,
		ParentID: &missing,
	}, domain.MutationMeta{})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error for missing parent, got %v", err)
	}
}

func TestLocationUpdateRejectsCycle(t *testing.T) {
	svc, _, _ := newTestLocationService()
	ctx := context.Background()

	root := seedLocation(t, svc, "Main", nil)
	child := seedLocation(t, svc, "Branch", &root.ID)
	grandchild := seedLocation(t, svc, "Satellite", &child.ID)

	// Moving the root under its own grandchild closes a cycle.
	root.ParentID = &grandchild.ID
	_, err := svc.Update(ctx, root, domain.MutationMeta{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("cycle should be rejected, got %v", err)
	}

	// Self-parenting is the degenerate case.
	child.ParentID = &child.ID
	if _, err := svc.Update(ctx, child, domain.MutationMeta{}); err == nil {
		t.Fatal("self-parenting should be rejected")
	}

	// A legal move still works.
	grandchild.ParentID = &root.ID
	if _, err := svc.Update(ctx, grandchild, domain.MutationMeta{}); err != nil {
		t.Fatalf("legal reparent: %v", err)
	}
}

func TestLocationDeleteGuards(t *testing.T) {
	svc, _, emps := newTestLocationService()
	ctx := context.Background()

	root := seedLocation(t, svc, "Main", nil)
	child := seedLocation(t, svc, "Branch", &root.ID)

	if _, err := svc.Delete(ctx, root.ID, domain.MutationMeta{}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("delete with children: got %v, want ErrConflict", err)
	}

	emps.byLocation[child.ID] = 3
	if _, err := svc.Delete(ctx, child.ID, domain.MutationMeta{}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("delete with employees: got %v, want ErrConflict", err)
	}

	emps.byLocation[child.ID] = 0
	deleted, err := svc.Delete(ctx, child.ID, domain.MutationMeta{})
	if err != nil || !deleted {
		t.Fatalf("delete empty leaf: deleted=%v err=%v", deleted, err)
	}
}

func TestLocationListTree(t *testing.T) {
	svc, _, _ := newTestLocationService()

	root := seedLocation(t, svc, "Main", nil)
	seedLocation(t, svc, "Branch", &root.ID)

	nodes, err := svc.ListTree(context.Background())
	if err != nil {
		t.Fatalf("list tree: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d roots, want 1", len(nodes))
	}
	if len(nodes[0].Children) != 1 || nodes[0].Children[0].Location.Name != "Branch" {
		t.Fatalf("unexpected tree shape: %+v", nodes)
	}
}
