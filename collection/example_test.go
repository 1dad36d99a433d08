package collection_test

import (
	"fmt"

	eventbus "github.com/lockp111/go-eventbus/v2"
	"github.com/lockp111/go-eventbus/v2/collection"
	"github.com/lockp111/go-eventbus/v2/model"
)

func Example() {
	todo := model.Define(model.Schema{"id": nil, "title": "", "done": false})
	todos := collection.New(todo)

	_, _ = todos.On("change:done:model", eventbus.Func[any](func(data ...any) error {
		m := data[0].(*model.Model)
		fmt.Printf("%s done=%v\n", m.ID(), data[1])
		return nil
	}))
	_, _ = todos.On("remove:model", eventbus.Func[any](func(data ...any) error {
		fmt.Println("removed", data[0].(*model.Model).ID())
		return nil
	}))

	first, _ := todos.Create(map[string]any{"title": "write docs"})
	_, _ = todos.Create(map[string]any{"title": "ship"})

	_ = first.Set("done", true)
	_ = first.Destroy()

	fmt.Println(todos.Len(), todos.Pluck("title"))
	// Output:
	// c0 done=true
	// removed c0
	// 1 [ship]
}
