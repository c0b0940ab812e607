package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/repository"
)

const (
	MsgNameRequired  = "name is required"
	MsgSportNotFound = "sport not found"
	MsgSportInUse    = "sport is assigned to courts or coaches and cannot be deleted"
)

// TaxonomyService manages the sports and qualifications reference tables.
// Every write purges cached listings.
type TaxonomyService struct {
	sports *repository.TaxonomyRepo
	quals  *repository.TaxonomyRepo
	purger Purger
}

func NewTaxonomyService(db *sql.DB, purger Purger) *TaxonomyService {
	if purger == nil {
		purger = nopPurger{}
	}
	return &TaxonomyService{
		sports: repository.NewSportRepo(db),
		quals:  repository.NewQualificationRepo(db),
		purger: purger,
	}
}

// UpsertSport creates the sport when absent and returns the stored row.
func (s *TaxonomyService) UpsertSport(ctx context.Context, name string) (model.Sport, error) {
	e, err := s.upsert(ctx, s.sports, name)
	if err != nil {
		return model.Sport{}, err
	}
	return e.Sport(), nil
}

// UpsertQualification is UpsertSport for qualifications.
func (s *TaxonomyService) UpsertQualification(ctx context.Context, name string) (model.Qualification, error) {
	e, err := s.upsert(ctx, s.quals, name)
	if err != nil {
		return model.Qualification{}, err
	}
	return e.Qualification(), nil
}

func (s *TaxonomyService) upsert(ctx context.Context, repo *repository.TaxonomyRepo, name string) (repository.Entry, error) {
	if strings.TrimSpace(name) == "" {
		return repository.Entry{}, validationErr(MsgNameRequired)
	}
	e, ok, err := repo.UpsertByName(ctx, name)
	if err != nil {
		return repository.Entry{}, internalErr("upsert", err)
	}
	if !ok {
		return repository.Entry{}, validationErr(MsgNameRequired)
	}
	s.purger.Purge(ctx)
	return e, nil
}

// ListSports returns active sports matching search, alphabetically.
func (s *TaxonomyService) ListSports(ctx context.Context, search string) ([]model.Sport, error) {
	entries, err := s.sports.List(ctx, search)
	if err != nil {
		return nil, internalErr("list sports", err)
	}
	out := make([]model.Sport, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Sport())
	}
	return out, nil
}

// ListQualifications returns qualifications matching search, alphabetically.
func (s *TaxonomyService) ListQualifications(ctx context.Context, search string) ([]model.Qualification, error) {
	entries, err := s.quals.List(ctx, search)
	if err != nil {
		return nil, internalErr("list qualifications", err)
	}
	out := make([]model.Qualification, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Qualification())
	}
	return out, nil
}

// DeleteSport hard-deletes a sport that no court or coach references.
func (s *TaxonomyService) DeleteSport(ctx context.Context, id uint64) error {
	err := s.sports.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrInUse):
		return &Error{Kind: KindInUse, Message: MsgSportInUse, Err: err}
	case errors.Is(err, repository.ErrEntryNotFound):
		return notFoundErr(MsgSportNotFound)
	case err != nil:
		return internalErr("delete sport", err)
	}
	s.purger.Purge(ctx)
	return nil
}
