package model

import "github.com/juju/errors"

// ErrDestroyed is returned by every data operation on a destroyed model.
const ErrDestroyed = errors.ConstError("model destroyed")
