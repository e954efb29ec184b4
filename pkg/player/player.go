// Package player walks a Morse code string in real time, one symbol per
// timer step, and drives a ToneSink.
//
// The player is a small state machine:
//
//	Idle --Play--> Playing(i) --timer--> Playing(i+1) ... --end--> Stopped
//	                   |                                     ^
//	                   +---------------Stop------------------+
//
// Play while playing restarts from index 0. A timer left over from an
// earlier run is ignored, so a restart never advances the new run early.
package player

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/realtime-ai/morse-wave/pkg/morse"
	"github.com/realtime-ai/morse-wave/pkg/synth"
)

// State of the player.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ToneSink sounds tones on some output. Its methods are called with the
// player lock held and must not call back into the Player.
type ToneSink interface {
	// Tone starts a tone of the given length and returns without waiting for it.
	Tone(freqHz float64, d time.Duration)
	// Silence cuts any tone that is still sounding.
	Silence()
}

// StateHook is called after every transition, outside the player lock.
type StateHook func(state State, index int)

// Option configures a Player.
type Option func(*Player)

// WithTimeUnit sets the base symbol duration.
func WithTimeUnit(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.unit = d
		}
	}
}

// WithFrequency sets the tone frequency.
func WithFrequency(hz float64) Option {
	return func(p *Player) {
		if hz > 0 {
			p.freq = hz
		}
	}
}

// WithStateHook registers a transition callback.
func WithStateHook(hook StateHook) Option {
	return func(p *Player) {
		p.hook = hook
	}
}

// Player plays one code string at a time.
type Player struct {
	sink ToneSink
	unit time.Duration
	freq float64
	hook StateHook

	mu    sync.Mutex
	state State
	index int
	code  []rune
	gen   uint64
	timer *time.Timer
	done  chan struct{}
}

// New creates a Player writing to sink.
func New(sink ToneSink, opts ...Option) *Player {
	p := &Player{
		sink:  sink,
		unit:  synth.TimeUnit,
		freq:  synth.ToneFrequencyHz,
		state: StateIdle,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts playing code from the beginning, cancelling any current run.
// Underscores are played as dashes.
func (p *Player) Play(code string) {
	p.mu.Lock()
	wasPlaying := p.state == StatePlaying
	p.cancelLocked()

	p.gen++
	p.code = []rune(strings.ReplaceAll(code, "_", string(morse.Dash)))
	p.index = 0
	p.done = make(chan struct{})

	if wasPlaying {
		p.sink.Silence()
	}

	if len(p.code) == 0 {
		p.state = StateStopped
		close(p.done)
		p.mu.Unlock()
		p.notify(StateStopped, 0)
		return
	}

	log.Printf("[Player] playing %d symbols", len(p.code))
	p.state = StatePlaying
	gen := p.gen
	p.mu.Unlock()

	p.notify(StatePlaying, 0)
	p.step(gen)
}

// Stop cancels the current run. It is a no-op unless playing.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	p.cancelLocked()
	p.gen++
	p.state = StateStopped
	index := p.index
	p.sink.Silence()
	p.mu.Unlock()

	log.Printf("[Player] stopped at symbol %d", index)
	p.notify(StateStopped, index)
}

// State returns the current state and symbol index.
func (p *Player) State() (State, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.index
}

// Wait blocks until the current run stops or ctx is done. It returns
// immediately when nothing was ever played.
func (p *Player) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateIdle {
		p.mu.Unlock()
		return nil
	}
	done := p.done
	p.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// step sounds the symbol at the current index and schedules the next one.
func (p *Player) step(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.state != StatePlaying {
		p.mu.Unlock()
		return
	}

	sym := p.code[p.index]
	d := time.Duration(morse.DurationUnits(sym)) * p.unit
	if morse.IsTone(sym) {
		p.sink.Tone(p.freq, d)
	}
	p.timer = time.AfterFunc(d+p.unit, func() { p.advance(gen) })
	p.mu.Unlock()
}

// advance moves to the next symbol or finishes the run.
func (p *Player) advance(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.state != StatePlaying {
		p.mu.Unlock()
		return
	}

	p.timer = nil
	if p.index+1 >= len(p.code) {
		p.state = StateStopped
		close(p.done)
		index := p.index
		p.mu.Unlock()
		p.notify(StateStopped, index)
		return
	}

	p.index++
	index := p.index
	p.mu.Unlock()

	p.notify(StatePlaying, index)
	p.step(gen)
}

// cancelLocked drops the pending timer and releases waiters of a running play.
func (p *Player) cancelLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.state == StatePlaying {
		close(p.done)
	}
}

func (p *Player) notify(state State, index int) {
	if p.hook != nil {
		p.hook(state, index)
	}
}
