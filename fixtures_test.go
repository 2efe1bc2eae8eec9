package treedi

import (
	"errors"
	"sync"
)

type (
	Speaker interface {
		Speak() string
	}

	Dog struct{ Name string }
	Cat struct{}

	Greeter struct {
		Greeting string
	}

	Kennel struct {
		Dog     *Dog    `inject:""`
		Speaker Speaker `inject:"name=loud,optional"`
		Name    string  `inject:"name=kennel.name,optional"`
		mascot  Speaker `inject:"optional"`
		ready   bool
	}

	CycleA struct{ B *CycleB }
	CycleB struct{ A *CycleA }

	FieldCycleA struct {
		B *FieldCycleB `inject:""`
	}
	FieldCycleB struct {
		A *FieldCycleA `inject:""`
	}

	WithDefaults struct {
		Greeting string `inject:"name=greeting,optional"`
		Count    int    `inject:"optional"`
	}

	Service struct {
		name        string
		dog         *Dog
		initialized bool
	}

	Recorder struct {
		mu     sync.Mutex
		events []string
	}

	ClosingResource struct {
		name     string
		recorder *Recorder
		failure  error
	}
)

func (*Dog) Speak() string { return "woof" }
func (*Cat) Speak() string { return "meow" }

func NewGreeter(greeting string) *Greeter {
	return &Greeter{Greeting: greeting}
}

func NewFailingGreeter() (*Greeter, error) {
	return nil, errors.New("greeter intentionally failed")
}

func NewPanickingGreeter() *Greeter {
	panic("boom")
}

func NewCycleA(b *CycleB) *CycleA { return &CycleA{B: b} }
func NewCycleB(a *CycleA) *CycleB { return &CycleB{A: a} }

func (k *Kennel) PostInject() {
	k.ready = true
}

func NewService(name string) *Service {
	return &Service{name: name}
}

func (s *Service) Init() error {
	if s.dog == nil {
		return errors.New("dog not injected before init")
	}
	s.initialized = true
	return nil
}

func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (c *ClosingResource) Close() error {
	c.recorder.Record("close " + c.name)
	return c.failure
}
