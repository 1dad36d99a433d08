// Package collection implements an ordered, id indexed set of models.
//
// A collection assigns every model a unique identifier, keeps an index from
// identifier to model and re-emits each model event on itself with a ":model"
// suffix and the model prepended to the arguments. A model that is destroyed
// leaves its collections on its own.
package collection

import (
	"encoding/json"
	"slices"

	"github.com/juju/errors"
	"github.com/lockp111/go-cmap"
	"go.uber.org/zap"

	eventbus "github.com/lockp111/go-eventbus/v2"
	"github.com/lockp111/go-eventbus/v2/model"
)

// Events emitted by a collection.
const (
	EventCreate  = "create:model"
	EventRemove  = "remove:model"
	EventChange  = "change"
	EventOrder   = "change:order"
	EventRefresh = "refresh"

	// BubbleSuffix is appended to the name of every re-emitted model event.
	BubbleSuffix = ":model"
)

// Factory builds the models of a collection. *model.Type is a Factory.
type Factory interface {
	New(attrs map[string]any) *model.Model
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(attrs map[string]any) *model.Model

// New calls f.
func (f FactoryFunc) New(attrs map[string]any) *model.Model {
	return f(attrs)
}

// Collection is an ordered sequence of models with unique identifiers.
//
// Like the bus it embeds, a Collection is not safe for concurrent use.
type Collection struct {
	*eventbus.Bus[any]

	factory Factory
	cfg     config
	models  []*model.Model
	index   cmap.ConcurrentMap[string, *model.Model]
	ids     map[*model.Model]string
	seq     int
}

// New returns an empty collection creating its models with factory. A nil
// factory is allowed when models are only ever added.
func New(factory Factory, opts ...Option) *Collection {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Collection{
		Bus:     eventbus.New[any](),
		factory: factory,
		cfg:     cfg,
		index:   cmap.New[*model.Model](),
		ids:     make(map[*model.Model]string),
	}
}

// Create builds a model from attrs and adds it.
func (c *Collection) Create(attrs map[string]any, opts ...model.CallOption) (*model.Model, error) {
	if c.factory == nil {
		return nil, ErrNoFactory
	}
	m := c.factory.New(attrs)
	if m == nil {
		return nil, errors.NotValidf("nil model from factory")
	}
	if err := c.Add(m, opts...); err != nil {
		return nil, err
	}
	return m, nil
}

// Add appends m.
//
// A model carrying an identifier keeps it and pushes the sequence past it. A
// model without one gets the next generated identifier, set silently. Unless
// Silent is given, "create:model" is emitted with m, then "change".
func (c *Collection) Add(m *model.Model, opts ...model.CallOption) error {
	if m == nil {
		return errors.NotValidf("nil model")
	}
	if m.IsDestroyed() {
		return model.ErrDestroyed
	}
	if c.Exists(m) {
		return ErrAlreadyAdded
	}

	id := m.ID()
	if id != "" {
		if c.index.Has(id) {
			return ErrDuplicateID
		}
		if n, ok := c.cfg.ids.Parse(id); ok {
			c.seq = c.cfg.ids.Advance(c.seq, n)
		}
	} else {
		var err error
		if id, err = c.nextID(); err != nil {
			return err
		}
		if err = m.Set(model.IDKey, id, model.Silent()); err != nil {
			return err
		}
	}

	c.models = append(c.models, m)
	c.index.Set(id, m)
	c.ids[m] = id
	if err := c.bubble(m); err != nil {
		c.detach(len(c.models)-1, m)
		return errors.Trace(err)
	}
	c.cfg.logger.Debug("model added", zap.String("id", id), zap.Int("length", len(c.models)))

	if model.NewCallOptions(opts...).Silent {
		return nil
	}
	if err := c.Trigger(EventCreate, m); err != nil {
		return err
	}
	return c.Trigger(EventChange)
}

// Remove takes m out of the collection without destroying it. Unless Silent
// is given, "remove:model" is emitted with m, then "change".
func (c *Collection) Remove(m *model.Model, opts ...model.CallOption) error {
	i := c.IndexOf(m)
	if i < 0 {
		return errors.NotFoundf("model")
	}
	id := c.ids[m]
	c.detach(i, m)
	c.cfg.logger.Debug("model removed", zap.String("id", id), zap.Int("length", len(c.models)))

	if model.NewCallOptions(opts...).Silent {
		return nil
	}
	if err := c.Trigger(EventRemove, m); err != nil {
		return err
	}
	return c.Trigger(EventChange)
}

// Move takes m out and inserts it back at pos, counted once m is removed, so
// that At(pos) is m afterwards. It emits "change:order" with m, then "change".
func (c *Collection) Move(m *model.Model, pos int) error {
	i := c.IndexOf(m)
	if i < 0 {
		return errors.NotFoundf("model")
	}
	if pos < 0 || pos >= len(c.models) {
		return errors.NotValidf("position %d of %d", pos, len(c.models))
	}

	c.models = slices.Delete(c.models, i, i+1)
	c.models = slices.Insert(c.models, pos, m)
	c.cfg.logger.Debug("model moved", zap.String("id", c.ids[m]), zap.Int("from", i), zap.Int("position", pos))

	if err := c.Trigger(EventOrder, m); err != nil {
		return err
	}
	return c.Trigger(EventChange)
}

// MoveBefore places m immediately before anchor, or last when anchor is nil.
func (c *Collection) MoveBefore(m, anchor *model.Model) error {
	i := c.IndexOf(m)
	if i < 0 {
		return errors.NotFoundf("model")
	}
	if anchor == nil {
		return c.Move(m, len(c.models)-1)
	}
	if anchor == m {
		return nil
	}
	j := c.IndexOf(anchor)
	if j < 0 {
		return errors.NotFoundf("anchor model")
	}
	if i < j {
		j--
	}
	return c.Move(m, j)
}

// Refresh creates a model for every element of data without per model
// events, then emits "refresh" once. With replace the current models are
// detached first; the id sequence restarts only under WithResetOnReplace.
//
// All models are built and their identifiers checked before the collection
// changes, so an identifier repeated in data, or already taken when appending,
// fails with ErrDuplicateID and leaves the collection as it was.
func (c *Collection) Refresh(data []map[string]any, replace bool) error {
	models, err := c.build(data, replace)
	if err != nil {
		return err
	}

	if replace {
		for _, m := range c.models {
			c.StopListening(m)
		}
		c.models = nil
		c.index = cmap.New[*model.Model]()
		c.ids = make(map[*model.Model]string)
		if c.cfg.resetOnReplace {
			c.seq = 0
		}
	}

	for _, m := range models {
		if err := c.Add(m, model.Silent()); err != nil {
			return err
		}
	}
	c.cfg.logger.Debug("collection refreshed", zap.Bool("replace", replace), zap.Int("length", len(c.models)))
	return c.Trigger(EventRefresh, c)
}

// build creates the models of data and rejects identifiers that would clash.
func (c *Collection) build(data []map[string]any, replace bool) ([]*model.Model, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if c.factory == nil {
		return nil, ErrNoFactory
	}

	models := make([]*model.Model, 0, len(data))
	seen := make(map[string]struct{}, len(data))
	for i, attrs := range data {
		m := c.factory.New(attrs)
		if m == nil {
			return nil, errors.NotValidf("nil model from factory for element %d", i)
		}
		if id := m.ID(); id != "" {
			if _, dup := seen[id]; dup || (!replace && c.index.Has(id)) {
				return nil, errors.Annotatef(ErrDuplicateID, "element %d id %q", i, id)
			}
			seen[id] = struct{}{}
		}
		models = append(models, m)
	}
	return models, nil
}

// Len returns the number of models.
func (c *Collection) Len() int {
	return len(c.models)
}

// IndexOf returns the position of m, or -1.
func (c *Collection) IndexOf(m *model.Model) int {
	if _, ok := c.ids[m]; !ok {
		return -1
	}
	return slices.Index(c.models, m)
}

// IndexOfID returns the position of the model indexed under id, or -1.
func (c *Collection) IndexOfID(id string) int {
	m, ok := c.index.Get(id)
	if !ok {
		return -1
	}
	return c.IndexOf(m)
}

// Get returns the model indexed under id.
func (c *Collection) Get(id string) (*model.Model, bool) {
	return c.index.Get(id)
}

// Exists reports whether m is in the collection.
func (c *Collection) Exists(m *model.Model) bool {
	_, ok := c.ids[m]
	return ok
}

// ExistsID reports whether a model is indexed under id.
func (c *Collection) ExistsID(id string) bool {
	return c.index.Has(id)
}

// At returns the model at pos, or nil when pos is out of range.
func (c *Collection) At(pos int) *model.Model {
	if pos < 0 || pos >= len(c.models) {
		return nil
	}
	return c.models[pos]
}

// First returns the first model, or nil.
func (c *Collection) First() *model.Model {
	return c.At(0)
}

// Last returns the last model, or nil.
func (c *Collection) Last() *model.Model {
	return c.At(len(c.models) - 1)
}

// All returns a copy of the models in order.
func (c *Collection) All() []*model.Model {
	return slices.Clone(c.models)
}

// Slice returns a copy of the models in [begin, end), both clamped to the
// collection bounds.
func (c *Collection) Slice(begin, end int) []*model.Model {
	begin = max(0, min(begin, len(c.models)))
	end = max(begin, min(end, len(c.models)))
	return slices.Clone(c.models[begin:end])
}

// ForEach calls fn for every model in order. The models are captured before
// the first call.
func (c *Collection) ForEach(fn func(m *model.Model, i int)) {
	for i, m := range c.All() {
		fn(m, i)
	}
}

// Filter returns the models for which fn is true.
func (c *Collection) Filter(fn func(m *model.Model, i int) bool) []*model.Model {
	out := make([]*model.Model, 0)
	for i, m := range c.All() {
		if fn(m, i) {
			out = append(out, m)
		}
	}
	return out
}

// Sort reorders the collection in place, keeping equal models in their
// current order. No event is emitted.
func (c *Collection) Sort(cmp func(a, b *model.Model) int) {
	slices.SortStableFunc(c.models, cmp)
}

// Pluck returns the value of key for every model, nil where unset.
func (c *Collection) Pluck(key string) []any {
	out := make([]any, 0, len(c.models))
	for _, m := range c.models {
		v, _ := m.Get(key)
		out = append(out, v)
	}
	return out
}

// ToJSON returns the ToJSON of every model, in order.
func (c *Collection) ToJSON() []map[string]any {
	out := make([]map[string]any, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m.ToJSON())
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToJSON())
}

func (c *Collection) nextID() (string, error) {
	for attempt := 0; attempt <= len(c.models); attempt++ {
		id, next := c.cfg.ids.Next(c.seq)
		c.seq = next
		if !c.index.Has(id) {
			return id, nil
		}
	}
	return "", errors.Errorf("no free id after %d attempts", len(c.models)+1)
}

func (c *Collection) detach(i int, m *model.Model) {
	c.models = slices.Delete(c.models, i, i+1)
	c.index.Remove(c.ids[m])
	delete(c.ids, m)
	c.StopListening(m)
}
