package eventbus

import "github.com/juju/errors"

const (
	// ErrNilEvent - a nil listener was given
	ErrNilEvent = errors.ConstError("eventbus: nil event")
	// ErrNoTopic - the topic list is empty
	ErrNoTopic = errors.ConstError("eventbus: no topic")
	// ErrNilSource - listen was called without a source
	ErrNilSource = errors.ConstError("eventbus: nil source")
	// ErrNoHandlers - listen was called without handlers
	ErrNoHandlers = errors.ConstError("eventbus: no handlers")
)
