package services

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"
)

type StudentService struct {
	catalog[models.Student, *models.Student]
	accounts *AccountService
	mailer   Mailer
}

func NewStudentService(store db.Store, accounts *AccountService, mailer Mailer) *StudentService {
	return &StudentService{
		catalog: catalog[models.Student, *models.Student]{
			store: store,
			table: func(s db.Store) db.Table[models.Student] { return s.Students() },
			label: "student",
		},
		accounts: accounts,
		mailer:   mailer,
	}
}

type StudentPatch struct {
	FirstName   *string
	MiddleName  *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Birthday    *time.Time
	YearLevel   *int
	YearSection *string
	DeleteFlag  *bool
}

func (s *StudentService) Get(ctx context.Context, studentNumber string) (*models.Student, error) {
	return s.findActive(ctx, s.store, studentNumber)
}

// Create stores the student and provisions its STUDENT account in the same
// transaction; the generated password is mailed after commit.
// st.YearLevel and st.YearSection only need their natural keys set.
func (s *StudentService) Create(ctx context.Context, st *models.Student) (*models.Student, error) {
	var mails []outgoingMail
	err := s.store.WithinTx(ctx, func(tx db.Store) error {
		m, err := s.create(ctx, tx, st)
		mails = m
		return err
	})
	if err != nil {
		return nil, err
	}
	flush(ctx, s.mailer, mails)
	return st, nil
}

func (s *StudentService) create(ctx context.Context, tx db.Store, st *models.Student) ([]outgoingMail, error) {
	st.StudentNumber = strings.TrimSpace(st.StudentNumber)
	if st.StudentNumber == "" {
		return nil, BadRequest("student number is required")
	}
	if err := s.ensureAbsent(ctx, tx, st.StudentNumber); err != nil {
		return nil, err
	}
	if err := s.resolveYear(ctx, tx, st); err != nil {
		return nil, err
	}
	st.ID = 0
	st.DeleteFlag = false
	if err := tx.Students().Create(ctx, st); err != nil {
		return nil, storeErr(err, s.describe(st.StudentNumber))
	}
	return s.accounts.provision(ctx, tx, st.StudentNumber, st.FullName(), st.Email, models.AccountStudent)
}

// resolveYear swaps the key-only YearLevel/YearSection on st for the
// stored rows.
func (s *StudentService) resolveYear(ctx context.Context, tx db.Store, st *models.Student) error {
	if st.YearLevel == nil || st.YearSection == nil {
		return BadRequest("year level and year section are required")
	}
	yl, err := tx.YearLevels().FindByKey(ctx, st.YearLevel.YearNumber)
	if err != nil || yl.DeleteFlag {
		if err != nil && !isNotFound(err) {
			return err
		}
		return NotFound("year level %d not found", st.YearLevel.YearNumber)
	}
	ys, err := tx.YearSections().FindByKey(ctx, st.YearSection.SectionName)
	if err != nil || ys.DeleteFlag {
		if err != nil && !isNotFound(err) {
			return err
		}
		return NotFound("year section %s not found", st.YearSection.SectionName)
	}
	st.YearLevel, st.YearLevelID = yl, yl.ID
	st.YearSection, st.YearSectionID = ys, ys.ID
	return nil
}

func (s *StudentService) Update(ctx context.Context, studentNumber string, p StudentPatch) (*models.Student, error) {
	var out *models.Student
	err := s.store.WithinTx(ctx, func(tx db.Store) error {
		st, err := s.find(ctx, tx, studentNumber)
		if err != nil {
			return err
		}
		if p.FirstName != nil {
			st.FirstName = *p.FirstName
		}
		if p.MiddleName != nil {
			st.MiddleName = *p.MiddleName
		}
		if p.LastName != nil {
			st.LastName = *p.LastName
		}
		if p.Email != nil {
			st.Email = *p.Email
		}
		if p.PhoneNumber != nil {
			st.PhoneNumber = *p.PhoneNumber
		}
		if p.Birthday != nil {
			st.Birthday = p.Birthday
		}
		if p.YearLevel != nil || p.YearSection != nil {
			want := *st
			if p.YearLevel != nil {
				want.YearLevel = &models.YearLevel{YearNumber: *p.YearLevel}
			}
			if p.YearSection != nil {
				want.YearSection = &models.YearSection{SectionName: *p.YearSection}
			}
			if err := s.resolveYear(ctx, tx, &want); err != nil {
				return err
			}
			st.YearLevel, st.YearLevelID = want.YearLevel, want.YearLevelID
			st.YearSection, st.YearSectionID = want.YearSection, want.YearSectionID
		}
		if p.DeleteFlag != nil {
			st.DeleteFlag = *p.DeleteFlag
		}
		out = st
		return storeErr(tx.Students().Save(ctx, st), s.describe(studentNumber))
	})
	return out, err
}

func (s *StudentService) SoftDelete(ctx context.Context, studentNumber string) error {
	_, err := s.softDelete(ctx, studentNumber, nil)
	return err
}

func sameStudent(stored, in *models.Student) bool {
	return stored.FirstName == in.FirstName &&
		stored.MiddleName == in.MiddleName &&
		stored.LastName == in.LastName &&
		stored.Email == in.Email &&
		stored.PhoneNumber == in.PhoneNumber &&
		sameInstant(stored.Birthday, in.Birthday) &&
		stored.YearLevel != nil && in.YearLevel != nil &&
		stored.YearLevel.YearNumber == in.YearLevel.YearNumber &&
		stored.YearSection != nil && in.YearSection != nil &&
		strings.EqualFold(stored.YearSection.SectionName, in.YearSection.SectionName) &&
		stored.DeleteFlag == in.DeleteFlag
}

func (s *StudentService) AddOrUpdate(ctx context.Context, sts []models.Student, overwrite bool) (int, error) {
	var mails []outgoingMail
	n, err := s.addOrUpdate(ctx, sts, overwrite, upsert[models.Student]{
		create: func(ctx context.Context, tx db.Store, st *models.Student) error {
			deleted := st.DeleteFlag
			m, err := s.create(ctx, tx, st)
			if err != nil {
				return err
			}
			mails = append(mails, m...)
			if deleted {
				st.DeleteFlag = true
				return tx.Students().Save(ctx, st)
			}
			return nil
		},
		same: sameStudent,
		apply: func(ctx context.Context, tx db.Store, stored, in *models.Student) error {
			if err := s.resolveYear(ctx, tx, in); err != nil {
				return err
			}
			stored.FirstName = in.FirstName
			stored.MiddleName = in.MiddleName
			stored.LastName = in.LastName
			stored.Email = in.Email
			stored.PhoneNumber = in.PhoneNumber
			stored.Birthday = in.Birthday
			stored.YearLevel, stored.YearLevelID = in.YearLevel, in.YearLevelID
			stored.YearSection, stored.YearSectionID = in.YearSection, in.YearSectionID
			stored.DeleteFlag = in.DeleteFlag
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	flush(ctx, s.mailer, mails)
	return n, nil
}
