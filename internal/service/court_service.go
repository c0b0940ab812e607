package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/repository"
)

const (
	MsgCourtNotFound = "court not found"
	MsgCourtInUse    = "court is referenced by bookings, classes or blocked slots and cannot be deleted"
)

// CourtInput is a create payload.  Status defaults to AVAILABLE.
type CourtInput struct {
	Name         string
	Capacity     *float64
	PricePerHour *float64
	Status       string
	SportIDs     []int64
}

// CourtUpdate is a partial update: nil fields keep their value.  A non-nil
// SportIDs (even empty) replaces the court's sports.
type CourtUpdate struct {
	Name         *string
	Capacity     *float64
	PricePerHour *float64
	Status       *string
	SportIDs     []int64
}

// CourtService manages the court inventory.
type CourtService struct {
	db     *sql.DB
	courts *repository.CourtRepo
}

func NewCourtService(db *sql.DB) *CourtService {
	return &CourtService{db: db, courts: repository.NewCourtRepo(db)}
}

func positiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func validCapacity(v float64) bool {
	return positiveFinite(v) && v == math.Trunc(v) && v <= math.MaxInt32
}

// sportIDs keeps distinct positive ids in input order.
func sportIDs(in []int64) []uint64 {
	return model.ByIDs(in).IDs()
}

// Create validates the payload and inserts the court with its sports in
// one transaction.  An unknown sport id rolls the court back.
func (s *CourtService) Create(ctx context.Context, in CourtInput) (model.Court, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Court{}, validationErr("name is required")
	}
	if in.Capacity == nil || !validCapacity(*in.Capacity) {
		return model.Court{}, validationErr("capacity must be a positive integer")
	}
	if in.PricePerHour == nil || !positiveFinite(*in.PricePerHour) {
		return model.Court{}, validationErr("pricePerHour must be a positive number")
	}
	status := model.CourtAvailable
	if strings.TrimSpace(in.Status) != "" {
		st, ok := model.ParseCourtStatus(in.Status)
		if !ok {
			return model.Court{}, validationErr("status must be one of AVAILABLE, BOOKED, MAINTENANCE")
		}
		status = st
	}
	ids := sportIDs(in.SportIDs)
	if len(ids) == 0 {
		return model.Court{}, validationErr("at least one sport is required")
	}

	c := model.Court{Name: name, Capacity: int(*in.Capacity), PricePerHour: *in.PricePerHour, Status: status}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.courts.WithTx(tx)
		if err := repo.Create(ctx, &c); err != nil {
			return internalErr("insert court", err)
		}
		if err := repo.ReplaceSports(ctx, c.ID, ids); err != nil {
			if errors.Is(err, repository.ErrInvalidReference) {
				return validationErr("unknown sport id")
			}
			return internalErr("link court sports", err)
		}
		return nil
	})
	if err != nil {
		return model.Court{}, err
	}
	return s.Get(ctx, c.ID)
}

// Update applies a partial update.  With nothing to change it only
// confirms that the court exists.
func (s *CourtService) Update(ctx context.Context, id uint64, in CourtUpdate) (model.Court, error) {
	var patch repository.CourtPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return model.Court{}, validationErr("name cannot be empty")
		}
		patch.Name = &name
	}
	if in.Capacity != nil {
		if !validCapacity(*in.Capacity) {
			return model.Court{}, validationErr("capacity must be a positive integer")
		}
		n := int(*in.Capacity)
		patch.Capacity = &n
	}
	if in.PricePerHour != nil {
		if !positiveFinite(*in.PricePerHour) {
			return model.Court{}, validationErr("pricePerHour must be a positive number")
		}
		patch.PricePerHour = in.PricePerHour
	}
	if in.Status != nil {
		st, ok := model.ParseCourtStatus(*in.Status)
		if !ok {
			return model.Court{}, validationErr("status must be one of AVAILABLE, BOOKED, MAINTENANCE")
		}
		patch.Status = &st
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.courts.WithTx(tx)
		ok, err := repo.Exists(ctx, id)
		if err != nil {
			return internalErr("load court", err)
		}
		if !ok {
			return notFoundErr(MsgCourtNotFound)
		}
		if err := repo.Update(ctx, id, patch); err != nil {
			return internalErr("update court", err)
		}
		if in.SportIDs == nil {
			return nil
		}
		if err := repo.ReplaceSports(ctx, id, sportIDs(in.SportIDs)); err != nil {
			if errors.Is(err, repository.ErrInvalidReference) {
				return validationErr("unknown sport id")
			}
			return internalErr("link court sports", err)
		}
		return nil
	})
	if err != nil {
		return model.Court{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the court and its sport links atomically.
func (s *CourtService) Delete(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := s.courts.WithTx(tx).Delete(ctx, id)
		switch {
		case errors.Is(err, repository.ErrInUse):
			return &Error{Kind: KindInUse, Message: MsgCourtInUse, Err: err}
		case err != nil:
			return internalErr("delete court", err)
		case !ok:
			return notFoundErr(MsgCourtNotFound)
		}
		return nil
	})
}

// List searches courts by name, newest first.
func (s *CourtService) List(ctx context.Context, search string) ([]model.Court, error) {
	out, err := s.courts.List(ctx, search)
	if err != nil {
		return nil, internalErr("list courts", err)
	}
	return out, nil
}

// Get loads one court with its sports.
func (s *CourtService) Get(ctx context.Context, id uint64) (model.Court, error) {
	c, err := s.courts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCourtNotFound) {
		return model.Court{}, notFoundErr(MsgCourtNotFound)
	}
	if err != nil {
		return model.Court{}, internalErr("load court", err)
	}
	return c, nil
}
