package services

import (
	"context"
	"strings"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"
)

type YearLevelService struct {
	catalog[models.YearLevel, *models.YearLevel]
}

func NewYearLevelService(store db.Store) *YearLevelService {
	return &YearLevelService{catalog[models.YearLevel, *models.YearLevel]{
		store: store,
		table: func(s db.Store) db.Table[models.YearLevel] { return s.YearLevels() },
		label: "year level",
	}}
}

func (s *YearLevelService) Get(ctx context.Context, yearNumber int) (*models.YearLevel, error) {
	return s.findActive(ctx, s.store, yearNumber)
}

// Create derives YearName from the number ("First", "Second", ...).
func (s *YearLevelService) Create(ctx context.Context, y *models.YearLevel) (*models.YearLevel, error) {
	err := s.store.WithinTx(ctx, func(st db.Store) error { return s.create(ctx, st, y) })
	if err != nil {
		return nil, err
	}
	return y, nil
}

func (s *YearLevelService) create(ctx context.Context, st db.Store, y *models.YearLevel) error {
	if y.YearNumber <= 0 {
		return BadRequest("year number must be positive")
	}
	if err := s.ensureAbsent(ctx, st, y.YearNumber); err != nil {
		return err
	}
	y.ID = 0
	y.YearName = OrdinalName(y.YearNumber)
	return storeErr(st.YearLevels().Create(ctx, y), s.describe(y.YearNumber))
}

type YearLevelPatch struct {
	YearName   *string
	DeleteFlag *bool
}

func (s *YearLevelService) Update(ctx context.Context, yearNumber int, p YearLevelPatch) (*models.YearLevel, error) {
	var out *models.YearLevel
	err := s.store.WithinTx(ctx, func(st db.Store) error {
		y, err := s.find(ctx, st, yearNumber)
		if err != nil {
			return err
		}
		if p.YearName != nil && strings.TrimSpace(*p.YearName) != "" {
			y.YearName = strings.TrimSpace(*p.YearName)
		}
		if p.DeleteFlag != nil {
			y.DeleteFlag = *p.DeleteFlag
		}
		out = y
		return storeErr(st.YearLevels().Save(ctx, y), s.describe(yearNumber))
	})
	return out, err
}

func (s *YearLevelService) SoftDelete(ctx context.Context, yearNumber int) error {
	_, err := s.softDelete(ctx, yearNumber, nil)
	return err
}

func (s *YearLevelService) AddOrUpdate(ctx context.Context, ys []models.YearLevel, overwrite bool) (int, error) {
	return s.addOrUpdate(ctx, ys, overwrite, upsert[models.YearLevel]{
		create: func(ctx context.Context, st db.Store, y *models.YearLevel) error {
			deleted := y.DeleteFlag
			if err := s.create(ctx, st, y); err != nil {
				return err
			}
			if deleted {
				y.DeleteFlag = true
				return st.YearLevels().Save(ctx, y)
			}
			return nil
		},
		same: func(stored, in *models.YearLevel) bool {
			return (in.YearName == "" || stored.YearName == in.YearName) && stored.DeleteFlag == in.DeleteFlag
		},
		apply: func(_ context.Context, _ db.Store, stored, in *models.YearLevel) error {
			if in.YearName != "" {
				stored.YearName = in.YearName
			}
			stored.DeleteFlag = in.DeleteFlag
			return nil
		},
	})
}

type YearSectionService struct {
	catalog[models.YearSection, *models.YearSection]
}

func NewYearSectionService(store db.Store) *YearSectionService {
	return &YearSectionService{catalog[models.YearSection, *models.YearSection]{
		store: store,
		table: func(s db.Store) db.Table[models.YearSection] { return s.YearSections() },
		label: "year section",
	}}
}

func (s *YearSectionService) Get(ctx context.Context, name string) (*models.YearSection, error) {
	return s.findActive(ctx, s.store, name)
}

func (s *YearSectionService) Create(ctx context.Context, y *models.YearSection) (*models.YearSection, error) {
	err := s.store.WithinTx(ctx, func(st db.Store) error { return s.create(ctx, st, y) })
	if err != nil {
		return nil, err
	}
	return y, nil
}

func (s *YearSectionService) create(ctx context.Context, st db.Store, y *models.YearSection) error {
	y.SectionName = strings.TrimSpace(y.SectionName)
	if y.SectionName == "" {
		return BadRequest("section name is required")
	}
	if err := s.ensureAbsent(ctx, st, y.SectionName); err != nil {
		return err
	}
	y.ID = 0
	return storeErr(st.YearSections().Create(ctx, y), s.describe(y.SectionName))
}

type YearSectionPatch struct {
	DeleteFlag *bool
}

func (s *YearSectionService) Update(ctx context.Context, name string, p YearSectionPatch) (*models.YearSection, error) {
	var out *models.YearSection
	err := s.store.WithinTx(ctx, func(st db.Store) error {
		y, err := s.find(ctx, st, name)
		if err != nil {
			return err
		}
		if p.DeleteFlag != nil {
			y.DeleteFlag = *p.DeleteFlag
		}
		out = y
		return storeErr(st.YearSections().Save(ctx, y), s.describe(name))
	})
	return out, err
}

func (s *YearSectionService) SoftDelete(ctx context.Context, name string) error {
	_, err := s.softDelete(ctx, name, nil)
	return err
}

func (s *YearSectionService) AddOrUpdate(ctx context.Context, ys []models.YearSection, overwrite bool) (int, error) {
	return s.addOrUpdate(ctx, ys, overwrite, upsert[models.YearSection]{
		create: func(ctx context.Context, st db.Store, y *models.YearSection) error {
			deleted := y.DeleteFlag
			if err := s.create(ctx, st, y); err != nil {
				return err
			}
			if deleted {
				y.DeleteFlag = true
				return st.YearSections().Save(ctx, y)
			}
			return nil
		},
		same: func(stored, in *models.YearSection) bool { return stored.DeleteFlag == in.DeleteFlag },
		apply: func(_ context.Context, _ db.Store, stored, in *models.YearSection) error {
			stored.DeleteFlag = in.DeleteFlag
			return nil
		},
	})
}
