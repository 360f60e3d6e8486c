package litedao

import (
	"context"

	"github.com/syssam/litedao/schema"
)

// ForeignKey references a record of type T by its identifier. Unlike a
// nested record, the referenced record is never loaded by a select; it is
// loaded on demand by Resolve and memoized.
//
//	body, _ := litedao.For[RigidBody](db).SelectByID(ctx, 1)
//	if v, ok := body.CenterOfMass.Resolve(ctx, db); ok {
//	    fmt.Println(v.X, v.Y)
//	}
type ForeignKey[T schema.Record] struct {
	// ID is the identifier of the referenced record. Zero means unset.
	ID uint32

	cached *T
}

// NewForeignKey returns a key referencing the record with the given id.
func NewForeignKey[T schema.Record](id uint32) ForeignKey[T] {
	return ForeignKey[T]{ID: id}
}

// KeyOf returns a key referencing the persisted record rec, with rec as its
// cached value. A record whose type cannot be described yields an unset key.
func KeyOf[T schema.Record](rec T) ForeignKey[T] {
	t, err := schema.Describe[T]()
	if err != nil {
		return ForeignKey[T]{}
	}
	return ForeignKey[T]{ID: t.IDOf(&rec), cached: &rec}
}

// IsSet reports if the key references a record.
func (k *ForeignKey[T]) IsSet() bool {
	return k.ID != 0
}

// Cached returns the value loaded by a previous Resolve, if any.
func (k *ForeignKey[T]) Cached() (T, bool) {
	if k.cached == nil {
		var zero T
		return zero, false
	}
	return *k.cached, true
}

// Resolve loads the referenced record through the access object of T held by
// db. An unset key resolves to nothing without touching storage, and a
// resolved key returns its cached value without a round-trip. A record that
// does not exist is not cached, so a later Resolve looks it up again.
func (k *ForeignKey[T]) Resolve(ctx context.Context, db *Database) (T, bool) {
	if !k.IsSet() {
		var zero T
		return zero, false
	}
	if k.cached != nil {
		return *k.cached, true
	}
	v, ok := For[T](db).SelectByID(ctx, k.ID)
	if ok {
		k.cached = &v
	}
	return v, ok
}

// Reset drops the cached value, so the next Resolve reads storage again.
func (k *ForeignKey[T]) Reset() {
	k.cached = nil
}
