package eventbus

import (
	"fmt"

	"github.com/juju/errors"
	"go.uber.org/multierr"
)

// Source - anything that can be listened to
//
// *Bus satisfies it, and so does every type embedding a *Bus.
type Source[T any] interface {
	On(topics string, e Event[T]) (Registrations, error)
	Off(topics string, ids ...uint64) *Bus[T]
}

// Handlers - topic to event mapping passed to Listen
type Handlers[T any] map[string]Event[T]

type subscription[T any] struct {
	source Source[T]
	regs   Registrations
}

// Listen - subscribe to the source and remember the registrations
//
// Registrations made before a failure are rolled back.
func (b *Bus[T]) Listen(source Source[T], handlers Handlers[T]) error {
	if err := checkPair(source, handlers); err != nil {
		return err
	}

	regs := make(Registrations, 0, len(handlers))
	for topics, e := range handlers {
		rs, err := source.On(topics, e)
		if err != nil {
			cancel(source, regs)
			return errors.Annotatef(err, "listen %q", topics)
		}
		regs = append(regs, rs...)
	}

	b.subscriptions = append(b.subscriptions, subscription[T]{source: source, regs: regs})
	return nil
}

// ListenPairs - Listen to a flat list of alternating sources and handlers
//
// Every pair is checked before anything is subscribed.
func (b *Bus[T]) ListenPairs(pairs ...any) error {
	if len(pairs) == 0 {
		return ErrNoHandlers
	}
	if len(pairs)%2 != 0 {
		return errors.NotValidf("odd number of listen arguments (%d)", len(pairs))
	}

	var (
		err     error
		sources = make([]Source[T], 0, len(pairs)/2)
		maps    = make([]Handlers[T], 0, len(pairs)/2)
	)
	for i := 0; i < len(pairs); i += 2 {
		source, ok := pairs[i].(Source[T])
		if !ok {
			err = multierr.Append(err, errors.NotValidf("argument %d: source of type %T", i, pairs[i]))
			continue
		}
		handlers, ok := asHandlers[T](pairs[i+1])
		if !ok {
			err = multierr.Append(err, errors.NotValidf("argument %d: handlers of type %T", i+1, pairs[i+1]))
			continue
		}
		if perr := checkPair(source, handlers); perr != nil {
			err = multierr.Append(err, fmt.Errorf("pair %d: %w", i/2, perr))
			continue
		}
		sources = append(sources, source)
		maps = append(maps, handlers)
	}
	if err != nil {
		return err
	}

	for i := range sources {
		if err := b.Listen(sources[i], maps[i]); err != nil {
			return err
		}
	}
	return nil
}

// StopListening - drop remembered subscriptions, only those on sources if any is given
func (b *Bus[T]) StopListening(sources ...Source[T]) *Bus[T] {
	kept := b.subscriptions[:0]
	for _, s := range b.subscriptions {
		if len(sources) > 0 && !containsSource(sources, s.source) {
			kept = append(kept, s)
			continue
		}
		cancel(s.source, s.regs)
	}
	clear(b.subscriptions[len(kept):])
	b.subscriptions = kept
	return b
}

// Listening - return the number of remembered subscriptions
func (b *Bus[T]) Listening() int {
	return len(b.subscriptions)
}

func checkPair[T any](source Source[T], handlers Handlers[T]) error {
	if source == nil {
		return ErrNilSource
	}
	if len(handlers) == 0 {
		return ErrNoHandlers
	}
	for topics, e := range handlers {
		if isNilEvent(e) {
			return errors.Annotatef(ErrNilEvent, "topic %q", topics)
		}
	}
	return nil
}

func asHandlers[T any](v any) (Handlers[T], bool) {
	switch h := v.(type) {
	case Handlers[T]:
		return h, true
	case map[string]Event[T]:
		return h, true
	}
	return nil, false
}

func containsSource[T any](sources []Source[T], source Source[T]) bool {
	for _, s := range sources {
		if s == source {
			return true
		}
	}
	return false
}

func cancel[T any](source Source[T], regs Registrations) {
	for _, r := range regs {
		source.Off(r.Topic, r.ID)
	}
}
