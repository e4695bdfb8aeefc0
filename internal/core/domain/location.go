package domain

import "time"

type LocationKind string

const (
	LocationClinic    LocationKind = "clinic"
	LocationAdmin     LocationKind = "admin"
	LocationSatellite LocationKind = "satellite"
)

// Location is a node in the facility tree. ParentID forms a
// self-referencing hierarchy; the service guards against cycles.
type Location struct {
	ID        uint
	Name      string
	Kind      LocationKind
	Address   string
	City      string
	State     string
	Zip       string
	ParentID  *uint
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l Location) Validate() error {
	var ve ValidationError
	if l.Name == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "name", Message: "required"})
	}
	switch l.Kind {
	case LocationClinic, LocationAdmin, LocationSatellite:
	default:
		ve.Fields = append(ve.Fields, FieldError{Field: "kind", Message: "must be one of clinic, admin, satellite"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// LocationNode is a location with its resolved children, used by the
// tree view of the listing endpoint.
type LocationNode struct {
	Location Location
	Children []LocationNode
}

// BuildLocationTree assembles the parent/child forest from a flat slice.
// Orphans (parent missing from the slice) surface as roots.
func BuildLocationTree(flat []Location) []LocationNode {
	byParent := make(map[uint][]Location)
	ids := make(map[uint]bool, len(flat))
	for _, loc := range flat {
		ids[loc.ID] = true
	}
	var roots []Location
	for _, loc := range flat {
		if loc.ParentID == nil || !ids[*loc.ParentID] {
			roots = append(roots, loc)
			continue
		}
		byParent[*loc.ParentID] = append(byParent[*loc.ParentID], loc)
	}

	var build func(loc Location) LocationNode
	build = func(loc Location) LocationNode {
		node := LocationNode{Location: loc, Children: []LocationNode{}}
		for _, child := range byParent[loc.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	nodes := make([]LocationNode, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, build(root))
	}
	return nodes
}
