package domain

import (
	"errors"
	"time"
)

var (
	ErrEmployerNotFound         = errors.New("employer not found")
	ErrEmployerExists           = errors.New("employer already exists")
	ErrEmployerHasChildren      = errors.New("cannot delete employer with child relationships")
	ErrRelationExists           = errors.New("relation already exists")
	ErrRelationEndpointNotFound = errors.New("child or parent's name is incorrect")
	ErrSelfRelation             = errors.New("an employer cannot be its own parent")
	ErrInvalidDateRange         = errors.New("end date cannot be before start date")
)

// DateLayout is the calendar format used on the wire and in fixtures.
const DateLayout = "2006-01-02"

// Employer is a company record. A nil EndDate means the company is still active.
type Employer struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	HeadquartersAddress string     `json:"headquarters_address"`
	Description         string     `json:"description"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty"`
}

// Active reports whether the employer has no end date.
func (e *Employer) Active() bool {
	return e.EndDate == nil
}

// ValidateDates enforces that an end date, when present, does not precede the start date.
func (e *Employer) ValidateDates() error {
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// Relation is a directed parent → child edge between two employers.
type Relation struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}

// ErrInvalidEmployer is returned when a required employer field is blank.
var ErrInvalidEmployer = errors.New("employer name and headquarters address are required")
