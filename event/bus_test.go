package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBus_Order(t *testing.T) {
	bus := NewBus[int]()

	var seen []string
	bus.AddHandler(HandlerFunc[int](func(e int) {
		seen = append(seen, "a")
	}))
	bus.AddHandler(HandlerFunc[int](func(e int) {
		seen = append(seen, "b")
	}))

	bus.OnEvent(1)
	bus.OnEvent(2)
	require.Equal(t, []string{"a", "b", "a", "b"}, seen)
}

func TestBus_Remove(t *testing.T) {
	bus := NewBus[int]()

	var a, b []int
	removeA := bus.AddHandler(HandlerFunc[int](func(e int) { a = append(a, e) }))
	bus.AddHandler(HandlerFunc[int](func(e int) { b = append(b, e) }))

	bus.OnEvent(1)
	removeA()
	removeA()
	bus.OnEvent(2)

	require.Equal(t, []int{1}, a)
	require.Equal(t, []int{1, 2}, b)
}

func TestBus_RemoveDuringDispatch(t *testing.T) {
	bus := NewBus[int]()

	var calls int
	var remove func()
	remove = bus.AddHandler(HandlerFunc[int](func(e int) {
		calls++
		remove()
	}))

	bus.OnEvent(1)
	bus.OnEvent(2)
	require.Equal(t, 1, calls)
}
