// Package uow releases partially built resources when construction fails.
package uow

import (
	"errors"
	"fmt"
)

type cleanup struct {
	name string
	fn   func() error
}

type Uow struct {
	cleanups []cleanup
}

func UnitOfWork() *Uow {
	return &Uow{}
}

// Add registers fn to release the resource called name.
func (r *Uow) Add(name string, fn func() error) {
	r.cleanups = append(r.cleanups, cleanup{name: name, fn: fn})
}

// Rollback runs the cleanups in reverse order and returns primary joined
// with any cleanup errors. A nil primary returns only the cleanup errors.
func (r *Uow) Rollback(primary error) error {
	errs := []error{primary}
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		c := r.cleanups[i]
		if err := c.fn(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", c.name, err))
		}
	}
	r.cleanups = nil
	return errors.Join(errs...)
}

// Commit hands the registered cleanups to the caller, which runs them on
// shutdown through the returned Uow.
func (r *Uow) Commit() *Uow {
	committed := &Uow{cleanups: r.cleanups}
	r.cleanups = nil
	return committed
}
