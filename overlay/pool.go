package overlay

// pool is a fixed size arena. Active items are kept at the front and
// released with swap-and-pop, so order is not stable.
type pool[T any] struct {
	items  []T
	active int
}

func newPool[T any](size int) pool[T] {
	return pool[T]{items: make([]T, size)}
}

// acquire returns a zeroed slot, or nil when the pool is full.
func (p *pool[T]) acquire() *T {
	if p.active >= len(p.items) {
		return nil
	}

	var zero T
	p.items[p.active] = zero
	p.active++

	return &p.items[p.active-1]
}

// release frees slot i by moving the last active item into it.
func (p *pool[T]) release(i int) {
	last := p.active - 1
	if i < 0 || i > last {
		return
	}

	p.items[i] = p.items[last]
	p.active--
}

// each calls fn on every active item, back to front, releasing the ones
// fn returns false for.
func (p *pool[T]) each(fn func(*T) bool) {
	for i := p.active - 1; i >= 0; i-- {
		if !fn(&p.items[i]) {
			p.release(i)
		}
	}
}

func (p *pool[T]) len() int {
	return p.active
}

func (p *pool[T]) clear() {
	p.active = 0
}

func (p *pool[T]) snapshot() []T {
	out := make([]T, p.active)
	copy(out, p.items[:p.active])
	return out
}
