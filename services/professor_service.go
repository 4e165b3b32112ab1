package services

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"
)

type ProfessorService struct {
	catalog[models.Professor, *models.Professor]
	accounts *AccountService
	mailer   Mailer
}

func NewProfessorService(store db.Store, accounts *AccountService, mailer Mailer) *ProfessorService {
	return &ProfessorService{
		catalog: catalog[models.Professor, *models.Professor]{
			store: store,
			table: func(s db.Store) db.Table[models.Professor] { return s.Professors() },
			label: "professor",
		},
		accounts: accounts,
		mailer:   mailer,
	}
}

type ProfessorPatch struct {
	Email       *string
	PhoneNumber *string
	Birthday    *time.Time
	DeleteFlag  *bool
}

func (s *ProfessorService) Get(ctx context.Context, name string) (*models.Professor, error) {
	return s.findActive(ctx, s.store, name)
}

// Create stores the professor and provisions its PROF account.
func (s *ProfessorService) Create(ctx context.Context, p *models.Professor) (*models.Professor, error) {
	var mails []outgoingMail
	err := s.store.WithinTx(ctx, func(tx db.Store) error {
		m, err := s.create(ctx, tx, p)
		mails = m
		return err
	})
	if err != nil {
		return nil, err
	}
	flush(ctx, s.mailer, mails)
	return p, nil
}

func (s *ProfessorService) create(ctx context.Context, tx db.Store, p *models.Professor) ([]outgoingMail, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, BadRequest("professor name is required")
	}
	if err := s.ensureAbsent(ctx, tx, p.Name); err != nil {
		return nil, err
	}
	p.ID = 0
	p.DeleteFlag = false
	if err := tx.Professors().Create(ctx, p); err != nil {
		return nil, storeErr(err, s.describe(p.Name))
	}
	return s.accounts.provision(ctx, tx, p.Name, p.Name, p.Email, models.AccountProf)
}

func (s *ProfessorService) Update(ctx context.Context, name string, patch ProfessorPatch) (*models.Professor, error) {
	var out *models.Professor
	err := s.store.WithinTx(ctx, func(tx db.Store) error {
		p, err := s.find(ctx, tx, name)
		if err != nil {
			return err
		}
		if patch.Email != nil {
			p.Email = *patch.Email
		}
		if patch.PhoneNumber != nil {
			p.PhoneNumber = *patch.PhoneNumber
		}
		if patch.Birthday != nil {
			p.Birthday = patch.Birthday
		}
		if patch.DeleteFlag != nil {
			p.DeleteFlag = *patch.DeleteFlag
		}
		out = p
		return storeErr(tx.Professors().Save(ctx, p), s.describe(name))
	})
	return out, err
}

func (s *ProfessorService) SoftDelete(ctx context.Context, name string) error {
	_, err := s.softDelete(ctx, name, nil)
	return err
}

func sameProfessor(stored, in *models.Professor) bool {
	return stored.Email == in.Email &&
		stored.PhoneNumber == in.PhoneNumber &&
		sameInstant(stored.Birthday, in.Birthday) &&
		stored.DeleteFlag == in.DeleteFlag
}

func (s *ProfessorService) AddOrUpdate(ctx context.Context, ps []models.Professor, overwrite bool) (int, error) {
	var mails []outgoingMail
	n, err := s.addOrUpdate(ctx, ps, overwrite, upsert[models.Professor]{
		create: func(ctx context.Context, tx db.Store, p *models.Professor) error {
			deleted := p.DeleteFlag
			m, err := s.create(ctx, tx, p)
			if err != nil {
				return err
			}
			mails = append(mails, m...)
			if deleted {
				p.DeleteFlag = true
				return tx.Professors().Save(ctx, p)
			}
			return nil
		},
		same: sameProfessor,
		apply: func(_ context.Context, _ db.Store, stored, in *models.Professor) error {
			stored.Email = in.Email
			stored.PhoneNumber = in.PhoneNumber
			stored.Birthday = in.Birthday
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
