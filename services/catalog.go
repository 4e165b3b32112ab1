package services

import (
	"context"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"
)

// catalog implements the natural-key CRUD every reference entity shares.
type catalog[T any, P models.RecordPtr[T]] struct {
	store db.Store
	table func(db.Store) db.Table[T]
	label string
}

func (c catalog[T, P]) describe(key any) string {
	return c.label + " " + stringify(key)
}

func (c catalog[T, P]) List(ctx context.Context) ([]T, error) {
	return c.table(c.store).List(ctx, true)
}

func (c catalog[T, P]) ListNotDeleted(ctx context.Context) ([]T, error) {
	return c.table(c.store).List(ctx, false)
}

// find returns the record whether or not it is soft-deleted.
func (c catalog[T, P]) find(ctx context.Context, s db.Store, key any) (*T, error) {
	rec, err := c.table(s).FindByKey(ctx, key)
	if err != nil {
		return nil, storeErr(err, c.describe(key))
	}
	return rec, nil
}

// findActive hides soft-deleted records.
func (c catalog[T, P]) findActive(ctx context.Context, s db.Store, key any) (*T, error) {
	rec, err := c.find(ctx, s, key)
	if err != nil {
		return nil, err
	}
	if P(rec).IsDeleted() {
		return nil, NotFound("%s not found", c.describe(key))
	}
	return rec, nil
}

func (c catalog[T, P]) ensureAbsent(ctx context.Context, s db.Store, key any) error {
	_, err := c.table(s).FindByKey(ctx, key)
	switch {
	case err == nil:
		return BadRequest("%s already exists", c.describe(key))
	case isNotFound(err):
		return nil
	}
	return err
}

// softDelete is not idempotent: flagging twice is a BAD_REQUEST.
func (c catalog[T, P]) softDelete(ctx context.Context, key any, check func(*T) error) (*T, error) {
	var rec *T
	err := c.store.WithinTx(ctx, func(s db.Store) error {
		r, err := c.find(ctx, s, key)
		if err != nil {
			return err
		}
		if P(r).IsDeleted() {
			return BadRequest("%s is already deleted", c.describe(key))
		}
		if check != nil {
			if err := check(r); err != nil {
				return err
			}
		}
		P(r).SetDeleted(true)
		rec = r
		return storeErr(c.table(s).Save(ctx, r), c.describe(key))
	})
	return rec, err
}

// upsert describes how addOrUpdate creates and compares one entity kind.
type upsert[T any] struct {
	create func(ctx context.Context, s db.Store, rec *T) error
	same   func(stored, in *T) bool
	apply  func(ctx context.Context, s db.Store, stored, in *T) error
}

// addOrUpdate inserts every record whose natural key is absent and, when
// overwrite is set, rewrites stored records that differ from the incoming
// ones. The whole batch commits or none of it does; the result counts the
// rows that were inserted or changed.
func (c catalog[T, P]) addOrUpdate(ctx context.Context, recs []T, overwrite bool, u upsert[T]) (int, error) {
	changed := 0
	err := c.store.WithinTx(ctx, func(s db.Store) error {
		changed = 0
		for i := range recs {
			in := &recs[i]
			key := P(in).KeyValue()
			stored, err := c.table(s).FindByKey(ctx, key)
			switch {
			case isNotFound(err):
				if err := u.create(ctx, s, in); err != nil {
					return err
				}
				changed++
			case err != nil:
				return err
			case overwrite && !u.same(stored, in):
				if err := u.apply(ctx, s, stored, in); err != nil {
					return err
				}
				if err := c.table(s).Save(ctx, stored); err != nil {
					return storeErr(err, c.describe(key))
				}
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
