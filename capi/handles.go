package capi

import (
	"sync"

	"git.disy.net/goetz/pommel"
)

// Synth and Bank are opaque handles. 0 is never issued and stands for
// "no object". A handle is owned by whoever created it until it is
// destroyed; destroying twice is a caller error and is ignored.
type (
	Synth uint64
	Bank  uint64
)

// registry maps handles to objects. Its lock guards the table only, the
// objects themselves are not locked.
type registry[T any] struct {
	sync.Mutex
	next  uint64
	items map[uint64]*T
}

func (r *registry[T]) put(v *T) uint64 {
	r.Lock()
	defer r.Unlock()

	if r.items == nil {
		r.items = make(map[uint64]*T)
	}
	r.next++
	r.items[r.next] = v
	return r.next
}

func (r *registry[T]) get(h uint64) (*T, bool) {
	r.Lock()
	defer r.Unlock()

	v, ok := r.items[h]
	return v, ok
}

func (r *registry[T]) take(h uint64) (*T, bool) {
	r.Lock()
	defer r.Unlock()

	v, ok := r.items[h]
	delete(r.items, h)
	return v, ok
}

func (r *registry[T]) len() int {
	r.Lock()
	defer r.Unlock()

	return len(r.items)
}

var (
	synths registry[pommel.Synth]
	banks  registry[pommel.Bank]
)

func lookupSynth(h Synth) (*pommel.Synth, bool) {
	return synths.get(uint64(h))
}

// lookupBank resolves h; the zero handle is a valid empty bank.
func lookupBank(h Bank) (*pommel.Bank, bool) {
	if h == 0 {
		return nil, true
	}
	return banks.get(uint64(h))
}

func sendSynth(out *Synth, s *pommel.Synth) Result {
	if out == nil {
		return InvalidInput
	}
	*out = Synth(synths.put(s))
	return Success
}

func sendBank(out *Bank, b *pommel.Bank) Result {
	if out == nil {
		return InvalidInput
	}
	*out = Bank(banks.put(b))
	return Success
}
