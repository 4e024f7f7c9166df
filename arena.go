package aspen

import "fmt"

// slot is one entry of a slotArena. A zero slot is free.
type slot[T any] struct {
	value T
	used  bool
}

// slotArena hands out stable indices. Freed slots are reused by the next
// insert before the backing slice grows, so removing one entry never shifts
// another entry's index. Cells are expected to hold few entries, which keeps
// the linear free-slot scan cheap.
type slotArena[T any] struct {
	slots []slot[T]
	live  int
}

// insert stores v in the first free slot, appending if none is free.
func (a *slotArena[T]) insert(v T) int {
	for i := range a.slots {
		if !a.slots[i].used {
			a.slots[i] = slot[T]{value: v, used: true}
			a.live++
			return i
		}
	}
	a.slots = append(a.slots, slot[T]{value: v, used: true})
	a.live++
	return len(a.slots) - 1
}

// remove frees slot i and returns its value.
func (a *slotArena[T]) remove(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(a.slots) {
		return zero, fmt.Errorf("%w: slot %d out of range [0, %d)", ErrInvalidKey, i, len(a.slots))
	}
	if !a.slots[i].used {
		return zero, fmt.Errorf("%w: slot %d is empty", ErrInvalidKey, i)
	}
	v := a.slots[i].value
	a.slots[i] = slot[T]{}
	a.live--
	return v, nil
}

// get returns a pointer to the value in slot i. The pointer is invalidated by
// the next insert into this arena.
func (a *slotArena[T]) get(i int) (*T, bool) {
	if i < 0 || i >= len(a.slots) || !a.slots[i].used {
		return nil, false
	}
	return &a.slots[i].value, true
}

// occupied reports whether slot i holds a value.
func (a *slotArena[T]) occupied(i int) bool {
	return i >= 0 && i < len(a.slots) && a.slots[i].used
}

// each calls fn for every occupied slot in index order until fn returns false.
func (a *slotArena[T]) each(fn func(i int, v *T) bool) {
	for i := range a.slots {
		if a.slots[i].used {
			if !fn(i, &a.slots[i].value) {
				return
			}
		}
	}
}

// len returns the length of the backing slice, free slots included.
func (a *slotArena[T]) len() int {
	return len(a.slots)
}
