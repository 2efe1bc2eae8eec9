package treedi

import (
	"reflect"
	"sync"
)

const inlineArgs = 4

type (
	// argBuffer holds constructor arguments, the first few inline and the rest in a spill slice.
	argBuffer struct {
		inline [inlineArgs]reflect.Value
		spill  []reflect.Value
		size   int
	}
)

var (
	argBuffers = sync.Pool{
		New: func() any { return &argBuffer{} },
	}
	valueLists = sync.Pool{
		New: func() any {
			values := make([]reflect.Value, 0, 8)
			return &values
		},
	}
)

// rentArgs returns a buffer and a slice of n values backed by it, the buffer must be released once
// the slice is no longer used.
func rentArgs(n int) (*argBuffer, []reflect.Value) {
	b := argBuffers.Get().(*argBuffer)
	return b, b.slice(n)
}

func (b *argBuffer) slice(n int) []reflect.Value {
	b.size = n
	if n <= inlineArgs {
		return b.inline[:n]
	}
	if cap(b.spill) < n {
		b.spill = make([]reflect.Value, n)
	}
	return b.spill[:n]
}

func (b *argBuffer) release() {
	if b.size <= inlineArgs {
		clear(b.inline[:b.size])
	} else {
		clear(b.spill[:b.size])
	}
	b.size = 0
	argBuffers.Put(b)
}

func rentValues() *[]reflect.Value {
	return valueLists.Get().(*[]reflect.Value)
}

func releaseValues(values *[]reflect.Value) {
	clear(*values)
	*values = (*values)[:0]
	valueLists.Put(values)
}
