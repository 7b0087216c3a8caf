package graph

import (
	"time"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

const (
	// ActiveCompany is rendered in place of a missing end date.
	ActiveCompany = "Active Company"
	// NoDescription is rendered in place of an empty description.
	NoDescription = "No Description"

	NodeDescriptionLimit = 100
	ListDescriptionLimit = 50

	ellipsis = "..."
)

// NodeView is one employer as consumed by the client-side graph view.
// Fill and Shape are only set on the traversal root.
type NodeView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
	Fill        string `json:"fill,omitempty"`
	Shape       string `json:"shape,omitempty"`
}

// EdgeView is a directed parent → child link.
type EdgeView struct {
	From     int64  `json:"from"`
	To       int64  `json:"to"`
	FromName string `json:"from_name"`
	ToName   string `json:"to_name"`
}

// RootHints adorns the root node of a subgraph.
type RootHints struct {
	Fill  string
	Shape string
}

// DefaultRootHints highlights the searched employer.
var DefaultRootHints = RootHints{Fill: "purple", Shape: "diamond"}

// NewNodeView renders an employer for the visualization.
func NewNodeView(e *domain.Employer) NodeView {
	return NodeView{
		ID:          e.ID,
		Name:        e.Name,
		Address:     e.HeadquartersAddress,
		StartDate:   e.StartDate.Format(domain.DateLayout),
		EndDate:     FormatEndDate(e.EndDate),
		Description: Describe(e.Description, NodeDescriptionLimit),
	}
}

// FormatEndDate returns ActiveCompany for a nil end date.
func FormatEndDate(t *time.Time) string {
	if t == nil {
		return ActiveCompany
	}
	return t.Format(domain.DateLayout)
}

// Describe normalizes an empty description and truncates long ones to limit
// characters followed by an ellipsis.
func Describe(description string, limit int) string {
	if description == "" {
		return NoDescription
	}
	return Truncate(description, limit)
}

// ListDescription is the shorter rendering used by the employer list.
func ListDescription(description string) string {
	return Describe(description, ListDescriptionLimit)
}

// Truncate cuts s to limit runes and appends an ellipsis when anything was cut.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + ellipsis
}
