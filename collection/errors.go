package collection

import "github.com/juju/errors"

const (
	// ErrDuplicateID is returned when an identifier is already indexed.
	ErrDuplicateID = errors.ConstError("duplicate model id")
	// ErrAlreadyAdded is returned when adding a model the collection holds.
	ErrAlreadyAdded = errors.ConstError("model already in collection")
	// ErrNoFactory is returned by Create on a collection built without a factory.
	ErrNoFactory = errors.ConstError("collection has no model factory")
)
