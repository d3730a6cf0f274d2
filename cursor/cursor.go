// Package cursor provides a buffered cursor over failable sequences with
// guarded look-ahead. A cursor pulls items lazily from an iter.Seq2[T, error]
// source, and guards let a consumer try a sub-parse and roll the position
// back if it does not pan out.
package cursor

import "iter"

// Cursor reads items from a sequence one at a time. Items already pulled are
// retained so that guards can restore earlier positions; navigation never
// reports errors directly, a source error is surfaced through Err once the
// items before it are consumed.
type Cursor[T any] struct {
	next    func() (T, error, bool)
	stop    func()
	buf     []T
	pos     int
	srcErr  error
	stopped bool
}

// New creates a cursor over seq. The sequence is pulled lazily: items are
// only produced as the cursor advances past its buffer.
func New[T any](seq iter.Seq2[T, error]) *Cursor[T] {
	next, stop := iter.Pull2(iter.Seq2[T, error](seq))
	return &Cursor[T]{next: next, stop: stop}
}

// fill pulls from the source until an item is available at the current
// position. It reports whether one is.
func (c *Cursor[T]) fill() bool {
	for c.pos >= len(c.buf) {
		if c.stopped {
			return false
		}
		v, err, ok := c.next()
		if !ok {
			c.close()
			return false
		}
		if err != nil {
			c.srcErr = err
			c.close()
			return false
		}
		c.buf = append(c.buf, v)
	}
	return true
}

func (c *Cursor[T]) close() {
	if !c.stopped {
		c.stopped = true
		c.stop()
	}
}

// More reports whether an item is available at the current position.
func (c *Cursor[T]) More() bool {
	return c.fill()
}

// Peek returns the item at the current position without consuming it.
func (c *Cursor[T]) Peek() (T, bool) {
	if !c.fill() {
		var zero T
		return zero, false
	}
	return c.buf[c.pos], true
}

// Next consumes and returns the item at the current position.
func (c *Cursor[T]) Next() (T, bool) {
	if !c.fill() {
		var zero T
		return zero, false
	}
	v := c.buf[c.pos]
	c.pos++
	return v, true
}

// NextIf consumes the item at the current position if pred accepts it.
func (c *Cursor[T]) NextIf(pred func(T) bool) (T, bool) {
	v, ok := c.Peek()
	if !ok || !pred(v) {
		var zero T
		return zero, false
	}
	c.pos++
	return v, true
}

// Err returns the error the source stopped with, or nil. It is meaningful
// once More reports false: the cursor ran out of items either because the
// sequence completed or because it failed, and Err tells the two apart.
func (c *Cursor[T]) Err() error {
	return c.srcErr
}

// Pos returns the number of items consumed so far.
func (c *Cursor[T]) Pos() int {
	return c.pos
}

// Stop releases the underlying sequence. Further navigation sees only the
// already buffered items.
func (c *Cursor[T]) Stop() {
	c.close()
}

// Guard marks the current position for rollback. The usual pattern is
//
//	g := cur.Guard()
//	defer g.Done()
//	... try a sub-parse ...
//	g.Commit()
//
// Done restores the marked position unless Commit was called first. Running
// Done from a defer keeps the rollback working even when a callback panics
// mid-parse.
type Guard[T any] struct {
	c         *Cursor[T]
	mark      int
	committed bool
	done      bool
}

// Guard returns a new guard marking the current position.
func (c *Cursor[T]) Guard() *Guard[T] {
	return &Guard[T]{c: c, mark: c.pos}
}

// Commit accepts everything consumed since the guard was created. The
// position stays where it is when Done runs.
func (g *Guard[T]) Commit() {
	g.committed = true
}

// Done ends the guard, rolling the cursor back to the marked position unless
// Commit was called. Calling Done more than once is a no-op.
func (g *Guard[T]) Done() {
	if g.done {
		return
	}
	g.done = true
	if !g.committed {
		g.c.pos = g.mark
	}
}
