package testfixtures

import (
	"fmt"
	"sync"
)

// CodeGenerator produces deterministic six-digit captcha codes for tests.
type CodeGenerator struct {
	mu      sync.Mutex
	counter uint64
}

// NewCodeGenerator constructs a generator starting at code 000001.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// Next returns the next code in the sequence.
func (g *CodeGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%06d", g.counter%1000000)
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *CodeGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetCounter overrides the internal counter, enabling deterministic resets.
func (g *CodeGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}
