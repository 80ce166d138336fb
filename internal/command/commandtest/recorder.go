// Package commandtest provides an in-memory actuator for tests.
package commandtest

import (
	"fmt"
	"sync"
)

type Kind string

const (
	Duty    Kind = "duty"
	Digital Kind = "digital"
	Servo   Kind = "servo"
)

type Call struct {
	Kind    Kind
	Channel int
	Value   int
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%d)=%d", c.Kind, c.Channel, c.Value)
}

// Recorder implements command.Actuator and keeps every call in order.
type Recorder struct {
	lock    sync.Mutex
	calls   []Call
	pins    map[int]bool
	Inited  bool
	Stopped bool
	Err     error
}

func NewRecorder() *Recorder {
	return &Recorder{
		pins: make(map[int]bool),
	}
}

func (r *Recorder) Init() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Inited = true
	return r.Err
}

func (r *Recorder) Stop() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Stopped = true
	return nil
}

func (r *Recorder) SetDutyCycle(channel int, duty uint8) error {
	return r.record(Call{Kind: Duty, Channel: channel, Value: int(duty)})
}

func (r *Recorder) SetDigital(pin int, high bool) error {
	value := 0
	if high {
		value = 1
	}
	r.lock.Lock()
	r.pins[pin] = high
	r.lock.Unlock()
	return r.record(Call{Kind: Digital, Channel: pin, Value: value})
}

func (r *Recorder) SetServoPulse(channel int, pulse uint16) error {
	return r.record(Call{Kind: Servo, Channel: channel, Value: int(pulse)})
}

func (r *Recorder) record(call Call) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.calls = append(r.calls, call)
	return nil
}

func (r *Recorder) Calls() []Call {
	r.lock.Lock()
	defer r.lock.Unlock()
	calls := make([]Call, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// CallsOf filters the recorded calls by kind.
func (r *Recorder) CallsOf(kind Kind) []Call {
	calls := make([]Call, 0)
	for _, call := range r.Calls() {
		if call.Kind == kind {
			calls = append(calls, call)
		}
	}
	return calls
}

func (r *Recorder) Pin(pin int) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.pins[pin]
}

func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.calls = nil
}
