package collection

import (
	"go.uber.org/zap"

	eventbus "github.com/lockp111/go-eventbus/v2"
	"github.com/lockp111/go-eventbus/v2/model"
)

// bubble subscribes the collection to every event of m.
func (c *Collection) bubble(m *model.Model) error {
	rekey := eventbus.Func[any](func(...any) error {
		return c.rekey(m)
	})

	return c.Listen(m, eventbus.Handlers[any]{
		eventbus.ALL: eventbus.TopicFunc[any](func(topic string, data []any) error {
			args := make([]any, 0, len(data)+1)
			args = append(args, m)
			return c.Trigger(topic+BubbleSuffix, append(args, data...)...)
		}),
		model.EventBeforeDestroy: eventbus.Func[any](func(...any) error {
			return c.Remove(m)
		}),
		model.ChangeEvent(model.IDKey): rekey,
		model.EventRefresh:             rekey,
	})
}

// rekey moves the index entry of m to its current identifier. An empty
// identifier is reverted silently. One held by another model is reverted with
// change events and reported as ErrDuplicateID.
func (c *Collection) rekey(m *model.Model) error {
	old, ok := c.ids[m]
	if !ok {
		return nil
	}
	id := m.ID()
	if id == old {
		return nil
	}

	if id == "" {
		return m.Set(model.IDKey, old, model.Silent())
	}
	if c.index.Has(id) {
		// Emitted, so collections that already moved to id follow m back.
		if err := m.Set(model.IDKey, old); err != nil {
			return err
		}
		if !m.Has(model.IDKey) {
			// plain fields change without events
			if err := m.Trigger(model.EventRefresh, m); err != nil {
				return err
			}
		}
		c.cfg.logger.Debug("model id collision reverted", zap.String("id", old), zap.String("taken", id))
		return ErrDuplicateID
	}

	c.index.Remove(old)
	c.index.Set(id, m)
	c.ids[m] = id
	c.cfg.logger.Debug("model id changed", zap.String("from", old), zap.String("to", id))
	return nil
}
