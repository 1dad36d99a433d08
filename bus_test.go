package eventbus

import (
	"errors"
	"testing"
)

type N struct {
	i *int
	s string
}

func (n *N) Dispatch(topic string, data []string) error {
	*n.i++
	for _, s := range data {
		n.s = s
	}
	return nil
}

type input struct {
	s string
	b bool
}

type FN struct {
	i *int
	t *testing.T
}

func (fn *FN) Dispatch(topic string, data []input) error {
	*fn.i++
	if len(data) == 0 {
		return nil
	}
	if !data[0].b || data[0].s != "bar" {
		fn.t.Error("The arguments must be correctly passed to the callback")
	}
	return nil
}

func mustOn[T any](t *testing.T, b *Bus[T], topics string, e Event[T]) Registrations {
	t.Helper()
	regs, err := b.On(topics, e)
	if err != nil {
		t.Fatalf("On(%q) failed: %v", topics, err)
	}
	return regs
}

func TestOn(t *testing.T) {
	o := New[string]()
	n := 0

	mustOn(t, o, "foo", &N{&n, ""})
	mustOn(t, o, "bar", &N{&n, ""})
	mustOn(t, o, "foo", &N{&n, ""})
	_ = o.Trigger("foo")
	_ = o.Trigger("foo")
	_ = o.Trigger("bar")

	if n != 5 {
		t.Errorf("The counter is %d instead of being %d", n, 5)
	}
}

func TestOnMultipleTopics(t *testing.T) {
	o := New[string]()
	n := 0

	regs := mustOn(t, o, "update  change\trefresh", &N{&n, ""})
	if len(regs) != 3 {
		t.Fatalf("got %d registrations instead of %d", len(regs), 3)
	}
	_ = o.Trigger("update")
	_ = o.Trigger("change")
	_ = o.Trigger("refresh")

	if n != 3 {
		t.Errorf("The counter is %d instead of being %d", n, 3)
	}
}

func TestRegistrationIDsAreMonotonic(t *testing.T) {
	o := New[string]()
	n := 0

	first := mustOn(t, o, "foo", &N{&n, ""})
	second := mustOn(t, o, "foo", &N{&n, ""})
	o.Off("foo", first[0].ID)
	third := mustOn(t, o, "foo", &N{&n, ""})

	if !(first[0].ID < second[0].ID && second[0].ID < third[0].ID) {
		t.Errorf("ids are not increasing: %d %d %d", first[0].ID, second[0].ID, third[0].ID)
	}

	_ = o.Trigger("foo")
	if n != 2 {
		t.Errorf("The counter is %d instead of being %d", n, 2)
	}
}

func TestOnAll(t *testing.T) {
	o := New[string]()
	n := 0

	onAll := &N{&n, ""}

	mustOn(t, o, ALL, onAll)

	_ = o.Trigger("foo", "foo")
	_ = o.Trigger("bar", "bar")

	o.OffEvent(ALL, onAll)

	_ = o.Trigger("bar", "bar")
	_ = o.Trigger("foo", "bar")

	if onAll.s != "bar" {
		t.Errorf("The last event name triggered is %s instead of being %s", onAll.s, "bar")
	}

	if n != 2 {
		t.Errorf("The counter is %d instead of being %d", n, 2)
	}
}

func TestObserverReceivesTopic(t *testing.T) {
	o := New[any]()
	var got []string

	_, err := o.OnAll(TopicFunc[any](func(topic string, data []any) error {
		got = append(got, topic)
		if len(data) != 1 || data[0] != "payload" {
			t.Errorf("unexpected data %v", data)
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}

	_ = o.Trigger("custom", "payload")
	_ = o.Trigger("other", "payload")

	if len(got) != 2 || got[0] != "custom" || got[1] != "other" {
		t.Errorf("observer saw %v", got)
	}
}

func TestObserverFiresBeforeListeners(t *testing.T) {
	o := New[any]()
	var order []string

	mustOn(t, o, "foo", Func[any](func(...any) error {
		order = append(order, "foo")
		return nil
	}))
	_, _ = o.OnAll(TopicFunc[any](func(topic string, _ []any) error {
		order = append(order, "all:"+topic)
		return nil
	}))

	_ = o.Trigger("foo")

	if len(order) != 2 || order[0] != "all:foo" || order[1] != "foo" {
		t.Errorf("dispatch order is %v", order)
	}
}

func TestTriggerAllDoesNotRecurse(t *testing.T) {
	o := New[any]()
	n := 0

	_, _ = o.OnAll(TopicFunc[any](func(topic string, _ []any) error {
		n++
		if topic != ALL {
			t.Errorf("topic is %q", topic)
		}
		return nil
	}))

	_ = o.Trigger(ALL)

	if n != 1 {
		t.Errorf("The counter is %d instead of being %d", n, 1)
	}
}

func TestClean(t *testing.T) {
	o := New[string]()
	n := 0

	fn := &N{&n, ""}
	mustOn(t, o, "foo", fn)
	mustOn(t, o, "bar", fn)
	mustOn(t, o, ALL, fn)

	o.Clean()

	_ = o.Trigger("foo")
	_ = o.Trigger("bar")
	_ = o.Trigger("foo bar")

	if n != 0 {
		t.Errorf("The counter is %d instead of being %d", n, 0)
	}
	if o.TotalEvents() != 0 {
		t.Errorf("%d events left after Clean", o.TotalEvents())
	}
}

func TestOff(t *testing.T) {
	o := New[string]()
	n := 0

	onFoo1 := &N{&n, ""}

	onFoo2 := &N{&n, ""}

	mustOn(t, o, "foo", onFoo1)
	mustOn(t, o, "foo", onFoo2)
	_ = o.Trigger("foo", "test1")
	if onFoo1.s != "test1" {
		t.Fail()
	}
	if onFoo2.s != "test1" {
		t.Fail()
	}

	o.OffEvent("foo", onFoo1).OffEvent("foo", onFoo2)
	mustOn(t, o, "foo", onFoo1)
	_ = o.Trigger("foo", "test2")
	if onFoo1.s != "test2" {
		t.Fail()
	}
	if onFoo2.s == "test2" {
		t.Fail()
	}

	mustOn(t, o, "foo", onFoo2)
	o.OffEvent("foo", onFoo1)
	_ = o.Trigger("foo", "test3")
	if onFoo1.s == "test3" {
		t.Fail()
	}
	if onFoo2.s != "test3" {
		t.Fail()
	}

	if n != 4 {
		t.Errorf("The counter is %d instead of being %d", n, 4)
	}
}

func TestOffByID(t *testing.T) {
	o := New[string]()
	n := 0

	fn := &N{&n, ""}
	regs := mustOn(t, o, "foo bar", fn)

	o.Off("foo", regs.IDs("foo")...)
	// unknown ids and topics are ignored
	o.Off("foo", 9999).Off("missing", 1)

	_ = o.Trigger("foo")
	_ = o.Trigger("bar")

	if n != 1 {
		t.Errorf("The counter is %d instead of being %d", n, 1)
	}
	if o.EventCount("foo") != 0 || o.TopicCount() != 1 {
		t.Errorf("foo has %d events, %d topics", o.EventCount("foo"), o.TopicCount())
	}
}

func TestOffWithoutIDs(t *testing.T) {
	o := New[string]()
	n := 0

	mustOn(t, o, "foo", &N{&n, ""})
	mustOn(t, o, "foo", &N{&n, ""})
	o.Off("foo")

	_ = o.Trigger("foo")
	if n != 0 {
		t.Errorf("The counter is %d instead of being %d", n, 0)
	}
}

func TestOne(t *testing.T) {
	o := New[string]()
	n := 0

	onFoo := &N{&n, ""}

	if _, err := o.Once("foo", onFoo); err != nil {
		t.Fatal(err)
	}

	_ = o.Trigger("foo")
	_ = o.Trigger("foo")
	_ = o.Trigger("foo")

	if n != 1 {
		t.Errorf("The counter is %d instead of being %d", n, 1)
	}
}

func TestOnceArguments(t *testing.T) {
	o := New[int]()
	var got []int

	_, _ = o.Once("special", Func[int](func(data ...int) error {
		got = append(got, data...)
		return nil
	}))

	_ = o.Trigger("special", 1, 2)
	_ = o.Trigger("special", 3, 4)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("once listener got %v", got)
	}
}

func TestOnceOffByEvent(t *testing.T) {
	o := New[any]()
	fn := Func[any](func(...any) error {
		t.Error("This function should not be called!")
		return nil
	})

	_, _ = o.Once("boom", fn)
	o.OffEvent("boom", fn)
	_ = o.Trigger("boom")
}

func TestOnceOffByID(t *testing.T) {
	o := New[any]()
	regs, _ := o.Once("boom", Func[any](func(...any) error {
		t.Error("This function should not be called!")
		return nil
	}))

	o.Off("boom", regs[0].ID)
	_ = o.Trigger("boom")
}

func TestOnceReentrant(t *testing.T) {
	o := New[any]()
	n := 0

	_, _ = o.Once("foo", Func[any](func(...any) error {
		n++
		// the registration is gone before the listener runs
		return o.Trigger("foo")
	}))

	if err := o.Trigger("foo"); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("The counter is %d instead of being %d", n, 1)
	}
}

func TestOffDuringDispatch(t *testing.T) {
	o := New[any]()
	var order []string
	var second Registrations

	mustOn(t, o, "foo", Func[any](func(...any) error {
		order = append(order, "first")
		o.Off("foo", second.IDs("foo")...)
		return nil
	}))
	second = mustOn(t, o, "foo", Func[any](func(...any) error {
		order = append(order, "second")
		return nil
	}))
	mustOn(t, o, "foo", Func[any](func(...any) error {
		order = append(order, "third")
		return nil
	}))

	_ = o.Trigger("foo")

	if len(order) != 2 || order[0] != "first" || order[1] != "third" {
		t.Errorf("dispatch order is %v", order)
	}
}

func TestOnDuringDispatch(t *testing.T) {
	o := New[any]()
	n := 0

	mustOn(t, o, "foo", Func[any](func(...any) error {
		mustOn(t, o, "foo", Func[any](func(...any) error {
			n++
			return nil
		}))
		return nil
	}))

	_ = o.Trigger("foo")
	if n != 0 {
		t.Errorf("a listener added during dispatch ran %d times", n)
	}
	_ = o.Trigger("foo")
	if n != 1 {
		t.Errorf("The counter is %d instead of being %d", n, 1)
	}
}

func TestListenerErrorAbortsDispatch(t *testing.T) {
	o := New[any]()
	boom := errors.New("boom")
	called := false

	mustOn(t, o, "foo", Func[any](func(...any) error { return boom }))
	mustOn(t, o, "foo", Func[any](func(...any) error {
		called = true
		return nil
	}))

	if err := o.Trigger("foo"); err != boom {
		t.Errorf("Trigger returned %v instead of %v", err, boom)
	}
	if called {
		t.Error("the second listener must not be called")
	}
}

func TestListenerPanicPropagates(t *testing.T) {
	o := New[any]()
	mustOn(t, o, "foo", Func[any](func(...any) error { panic("boom") }))

	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recovered %v", r)
		}
	}()
	_ = o.Trigger("foo")
	t.Error("Trigger must not return")
}

func TestUsageErrors(t *testing.T) {
	o := New[any]()

	if _, err := o.On("foo", nil); err != ErrNilEvent {
		t.Errorf("nil event: %v", err)
	}
	if _, err := o.On("foo", Func[any](nil)); err != ErrNilEvent {
		t.Errorf("nil func: %v", err)
	}
	if _, err := o.On("  ", Func[any](func(...any) error { return nil })); err != ErrNoTopic {
		t.Errorf("empty topics: %v", err)
	}
	if _, err := o.OnAll(nil); err != ErrNilEvent {
		t.Errorf("nil observer: %v", err)
	}
}

func TestTriggerRepeated(t *testing.T) {
	o := New[string]()
	n := 0

	fn := &N{&n, ""}
	mustOn(t, o, "foo", fn)

	for i := 0; i < 5; i++ {
		_ = o.Trigger("foo")
	}

	if n != 5 {
		t.Errorf("The counter is %d instead of being %d", n, 5)
	}
}

func TestArguments(t *testing.T) {
	o := New[input]()
	n := 0
	fn := &FN{&n, t}
	mustOn[input](t, o, "foo", fn)

	_ = o.Trigger("foo", input{"bar", true})

	if n != 1 {
		t.Errorf("The counter is %d instead of being %d", n, 1)
	}
}

func TestTrigger(t *testing.T) {
	o := New[interface{}]()
	// the trigger without any listener should not throw errors
	if err := o.Trigger("foo"); err != nil {
		t.Error(err)
	}
}

func TestBroadcast(t *testing.T) {
	o := New[string]()
	var topics []string

	for _, name := range []string{"b", "a", "c"} {
		mustOn(t, o, name, TopicFunc[string](func(topic string, data []string) error {
			topics = append(topics, topic+"="+data[0])
			return nil
		}))
	}

	if err := o.Broadcast("x"); err != nil {
		t.Fatal(err)
	}
	if len(topics) != 3 || topics[0] != "a=x" || topics[1] != "b=x" || topics[2] != "c=x" {
		t.Errorf("broadcast reached %v", topics)
	}
}

func TestCounts(t *testing.T) {
	o := New[string]()
	n := 0

	mustOn(t, o, "foo bar", &N{&n, ""})
	mustOn(t, o, "foo", &N{&n, ""})
	_, _ = o.OnAll(&N{&n, ""})

	if o.TopicCount() != 2 {
		t.Errorf("TopicCount is %d", o.TopicCount())
	}
	if o.EventCount("foo") != 2 || o.EventCount(ALL) != 1 {
		t.Errorf("EventCount foo=%d all=%d", o.EventCount("foo"), o.EventCount(ALL))
	}
	if o.TotalEvents() != 4 {
		t.Errorf("TotalEvents is %d", o.TotalEvents())
	}
	if o.Get("missing") != nil {
		t.Error("Get must return nil for unknown topics")
	}
	if o.Get("foo").Name() != "foo" {
		t.Errorf("topic name is %q", o.Get("foo").Name())
	}
}

func TestDefaultBus(t *testing.T) {
	defer Clean()
	n := 0

	regs, err := On("foo", Func[any](func(...any) error {
		n++
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = Once("foo", Func[any](func(...any) error {
		n++
		return nil
	}))

	_ = Trigger("foo")
	Off("foo", regs[0].ID)
	_ = Trigger("foo")

	if n != 2 {
		t.Errorf("The counter is %d instead of being %d", n, 2)
	}
	if Default().EventCount("foo") != 0 {
		t.Errorf("%d events left", Default().EventCount("foo"))
	}
}
