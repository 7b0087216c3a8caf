// Package seed imports employers and relations from a YAML fixture.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// Actor is the account mutations are attributed to during an import.
var Actor = &domain.User{Email: "seed@localhost", Admin: true, EmailConfirmed: true}

// File is the fixture layout.
type File struct {
	Employers []Employer `yaml:"employers"`
	Relations []Relation `yaml:"relations"`
}

type Employer struct {
	Name                string `yaml:"name"`
	HeadquartersAddress string `yaml:"headquarters_address"`
	Description         string `yaml:"description"`
	StartDate           string `yaml:"start_date"`
	EndDate             string `yaml:"end_date"`
}

type Relation struct {
	Parent string `yaml:"parent"`
	Child  string `yaml:"child"`
}

// Report counts what an import did.
type Report struct {
	EmployersCreated int
	EmployersSkipped int
	RelationsCreated int
	RelationsSkipped int
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Importer loads a fixture through the employer service so every record goes
// through the same validation as the HTTP API.
type Importer struct {
	employers ports.EmployerService
	tx        ports.TxManager
	logger    zerolog.Logger
}

func NewImporter(employers ports.EmployerService, tx ports.TxManager, logger zerolog.Logger) *Importer {
	return &Importer{employers: employers, tx: tx, logger: logger}
}

// Import applies f in a single unit of work. Employers that already exist and
// relations already present are skipped, so a fixture can be re-applied.
func (im *Importer) Import(ctx context.Context, f *File) (Report, error) {
	var report Report
	err := im.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		report = Report{}

		for i, e := range f.Employers {
			in, err := e.input()
			if err != nil {
				return fmt.Errorf("employer %d (%q): %w", i, e.Name, err)
			}
			_, err = im.employers.CreateEmployer(ctx, Actor, in)
			switch {
			case errors.Is(err, domain.ErrEmployerExists):
				report.EmployersSkipped++
			case err != nil:
				return fmt.Errorf("employer %d (%q): %w", i, e.Name, err)
			default:
				report.EmployersCreated++
			}
		}

		for i, r := range f.Relations {
			err := im.employers.AddRelation(ctx, Actor, ports.RelationInput{ParentName: r.Parent, ChildName: r.Child})
			switch {
			case errors.Is(err, domain.ErrRelationExists):
				report.RelationsSkipped++
			case err != nil:
				return fmt.Errorf("relation %d (%s -> %s): %w", i, r.Parent, r.Child, err)
			default:
				report.RelationsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	im.logger.Info().
		Int("employers_created", report.EmployersCreated).
		Int("employers_skipped", report.EmployersSkipped).
		Int("relations_created", report.RelationsCreated).
		Int("relations_skipped", report.RelationsSkipped).
		Msg("seed applied")
	return report, nil
}

func (e Employer) input() (ports.CreateEmployerInput, error) {
	start, err := parseDate(e.StartDate)
	if err != nil {
		return ports.CreateEmployerInput{}, fmt.Errorf("start_date: %w", err)
	}
	in := ports.CreateEmployerInput{
		Name:                e.Name,
		HeadquartersAddress: e.HeadquartersAddress,
		Description:         e.Description,
		StartDate:           start,
	}
	if e.EndDate != "" {
		end, err := parseDate(e.EndDate)
		if err != nil {
			return ports.CreateEmployerInput{}, fmt.Errorf("end_date: %w", err)
		}
		in.EndDate = &end
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, s, time.UTC)
}
