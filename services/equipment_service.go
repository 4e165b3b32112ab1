package services

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EquipmentService struct {
	catalog[models.Equipment, *models.Equipment]
	now func() time.Time
}

func NewEquipmentService(store db.Store) *EquipmentService {
	return &EquipmentService{
		catalog: catalog[models.Equipment, *models.Equipment]{
			store: store,
			table: func(s db.Store) db.Table[models.Equipment] { return s.Equipments() },
			label: "equipment",
		},
		now: time.Now,
	}
}

type EquipmentPatch struct {
	Name         *string
	Barcode      *string
	Status       *models.EquipmentStatus
	IsDuplicable *bool
	DeleteFlag   *bool
}

func NewEquipmentCode() string {
	return "EQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func (s *EquipmentService) Get(ctx context.Context, code string) (*models.Equipment, error) {
	return s.findActive(ctx, s.store, code)
}

func (s *EquipmentService) GetByBarcode(ctx context.Context, barcode string) (*models.Equipment, error) {
	e, err := s.store.FindEquipmentByBarcode(ctx, barcode)
	if err != nil {
		return nil, storeErr(err, "equipment with barcode "+barcode)
	}
	if e.DeleteFlag {
		return nil, NotFound("equipment with barcode %s not found", barcode)
	}
	return e, nil
}

// Create assigns an equipment code when none is given. New equipment is
// never borrowed.
func (s *EquipmentService) Create(ctx context.Context, e *models.Equipment) (*models.Equipment, error) {
	err := s.store.WithinTx(ctx, func(tx db.Store) error { return s.create(ctx, tx, e) })
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EquipmentService) create(ctx context.Context, tx db.Store, e *models.Equipment) error {
	e.EquipmentCode = strings.TrimSpace(e.EquipmentCode)
	e.Barcode = strings.TrimSpace(e.Barcode)
	if e.EquipmentCode == "" {
		e.EquipmentCode = NewEquipmentCode()
	}
	if e.Barcode == "" {
		return BadRequest("barcode is required")
	}
	if e.Status == "" {
		e.Status = models.EquipmentGood
	}
	if !e.Status.Valid() {
		return BadRequest("invalid equipment status %q", e.Status)
	}
	if err := s.ensureAbsent(ctx, tx, e.EquipmentCode); err != nil {
		return err
	}
	if _, err := tx.FindEquipmentByBarcode(ctx, e.Barcode); err == nil {
		return BadRequest("barcode %s already exists", e.Barcode)
	} else if !isNotFound(err) {
		return err
	}
	s.stampDefective(e, "")
	e.ID = 0
	e.IsBorrowed = false
	e.DeleteFlag = false
	return storeErr(tx.Equipments().Create(ctx, e), s.describe(e.EquipmentCode))
}

// stampDefective keeps DefectiveSince in step with Status.
func (s *EquipmentService) stampDefective(e *models.Equipment, previous models.EquipmentStatus) {
	switch e.Status {
	case models.EquipmentGood:
		e.DefectiveSince = nil
	case models.EquipmentDefective:
		if e.DefectiveSince == nil || previous == models.EquipmentGood {
			now := s.now()
			e.DefectiveSince = &now
		}
	}
}

func (s *EquipmentService) Update(ctx context.Context, code string, p EquipmentPatch) (*models.Equipment, error) {
	var out *models.Equipment
	err := s.store.WithinTx(ctx, func(tx db.Store) error {
		e, err := s.find(ctx, tx, code)
		if err != nil {
			return err
		}
		if p.Name != nil {
			e.Name = *p.Name
		}
		if p.Barcode != nil && *p.Barcode != e.Barcode {
			if _, err := tx.FindEquipmentByBarcode(ctx, *p.Barcode); err == nil {
				return BadRequest("barcode %s already exists", *p.Barcode)
			} else if !isNotFound(err) {
				return err
			}
			e.Barcode = *p.Barcode
		}
		if p.Status != nil {
			if !p.Status.Valid() {
				return BadRequest("invalid equipment status %q", *p.Status)
			}
			previous := e.Status
			e.Status = *p.Status
			s.stampDefective(e, previous)
		}
		if p.IsDuplicable != nil {
			if *p.IsDuplicable && e.IsBorrowed {
				return BadRequest("equipment %s is borrowed and cannot become duplicable", code)
			}
			e.IsDuplicable = *p.IsDuplicable
		}
		if p.DeleteFlag != nil {
			e.DeleteFlag = *p.DeleteFlag
		}
		out = e
		return storeErr(tx.Equipments().Save(ctx, e), s.describe(code))
	})
	return out, err
}

// Release clears a stale isBorrowed flag. Transaction updates that drop an
// item leave it flagged; once no transaction holds the item any more an
// admin can hand it back to the pool here.
func (s *EquipmentService) Release(ctx context.Context, code string) (*models.Equipment, error) {
	var out *models.Equipment
	err := s.store.WithinTx(ctx, func(tx db.Store) error {
		e, err := s.find(ctx, tx, code)
		if err != nil {
			return err
		}
		locked, err := tx.LockEquipments(ctx, []uint{e.ID})
		if err != nil {
			return err
		}
		if len(locked) == 1 {
			*e = locked[0]
		}
		if !e.IsBorrowed {
			out = e
			return nil
		}
		held, err := tx.EquipmentOutstanding(ctx, e.ID)
		if err != nil {
			return err
		}
		if held {
			return BadRequest("equipment %s is outstanding on a transaction", code)
		}
		if err := tx.SetEquipmentBorrowed(ctx, []uint{e.ID}, false); err != nil {
			return err
		}
		e.IsBorrowed = false
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("equipment released", zap.String("equipmentCode", out.EquipmentCode))
	return out, nil
}

// SoftDelete refuses equipment that is still out on a transaction.
func (s *EquipmentService) SoftDelete(ctx context.Context, code string) error {
	_, err := s.softDelete(ctx, code, func(e *models.Equipment) error {
		if e.IsBorrowed {
			return BadRequest("equipment %s is currently borrowed", code)
		}
		return nil
	})
	return err
}

func sameEquipment(stored, in *models.Equipment) bool {
	return stored.Barcode == in.Barcode &&
		stored.Name == in.Name &&
		stored.Status == in.Status &&
		stored.IsDuplicable == in.IsDuplicable &&
		stored.DeleteFlag == in.DeleteFlag
}

// AddOrUpdate never writes IsBorrowed; that flag belongs to transactions.
func (s *EquipmentService) AddOrUpdate(ctx context.Context, es []models.Equipment, overwrite bool) (int, error) {
	return s.addOrUpdate(ctx, es, overwrite, upsert[models.Equipment]{
		create: func(ctx context.Context, tx db.Store, e *models.Equipment) error {
			deleted := e.DeleteFlag
			if err := s.create(ctx, tx, e); err != nil {
				return err
			}
			if deleted {
				e.DeleteFlag = true
				return tx.Equipments().Save(ctx, e)
			}
			return nil
		},
		same: sameEquipment,
		apply: func(ctx context.Context, tx db.Store, stored, in *models.Equipment) error {
			if in.Barcode != stored.Barcode {
				if _, err := tx.FindEquipmentByBarcode(ctx, in.Barcode); err == nil {
					return BadRequest("barcode %s already exists", in.Barcode)
				} else if !isNotFound(err) {
					return err
				}
			}
			if in.IsDuplicable && stored.IsBorrowed {
				return BadRequest("equipment %s is borrowed and cannot become duplicable", stored.EquipmentCode)
			}
			if !in.Status.Valid() {
				return BadRequest("invalid equipment status %q", in.Status)
			}
			previous := stored.Status
			stored.Barcode = in.Barcode
			stored.Name = in.Name
			stored.Status = in.Status
			stored.IsDuplicable = in.IsDuplicable
			stored.DeleteFlag = in.DeleteFlag
			s.stampDefective(stored, previous)
			return nil
		},
	})
}
