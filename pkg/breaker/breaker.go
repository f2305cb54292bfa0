package breaker

import (
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

type Config struct {
	// Размер скользящего окна (количество последних вызовов)
	WindowSize int
	// Порог доли неудач в окне, в процентах. Брейкер открывается,
	// когда доля строго превышает порог
	FailureRateThreshold float64
	// Минимум вызовов в окне, раньше которого брейкер не срабатывает
	MinSamples int
	// Сколько держать OPEN до перехода в HALF_OPEN
	Cooldown time.Duration
	// Сколько пробных вызовов пропустить в HALF_OPEN
	HalfOpenMaxProbes int

	OnStateChange func(name string, from, to State)
}

// Stats - снимок счетчиков для интроспекции
type Stats struct {
	State         string  `json:"state"`
	BufferedCalls int     `json:"buffered_calls"`
	Successes     int     `json:"successful_calls"`
	Failures      int     `json:"failed_calls"`
	Rejected      int     `json:"rejected_calls"`
	FailureRate   float64 `json:"failure_rate"`
}

type Breaker struct {
	name string
	cfg  Config

	mu       sync.Mutex
	state    State
	window   []bool // true = неудача
	head     int
	count    int
	failures int
	rejected int
	openedAt time.Time
	probes   int
}

func New(name string, cfg Config) *Breaker {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 10
	}
	if cfg.FailureRateThreshold <= 0 {
		cfg.FailureRateThreshold = 50
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 10 * time.Second
	}
	if cfg.HalfOpenMaxProbes <= 0 {
		cfg.HalfOpenMaxProbes = 1
	}

	return &Breaker{
		name:   name,
		cfg:    cfg,
		window: make([]bool, cfg.WindowSize),
	}
}

func (b *Breaker) Name() string { return b.name }

// Execute пропускает fn через брейкер. В OPEN вызов отклоняется сразу
// с ErrOpen, в HALF_OPEN пропускается ограниченное число проб.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.openedAt) < b.cfg.Cooldown {
			b.rejected++
			return ErrOpen
		}
		b.transition(StateHalfOpen)
		b.probes = 0
		fallthrough
	case StateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxProbes {
			b.rejected++
			return ErrOpen
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		// Решаем по результату пробы, окно начинаем заново
		if success {
			b.reset()
			b.transition(StateClosed)
		} else {
			b.openedAt = time.Now()
			b.transition(StateOpen)
		}
	case StateClosed:
		b.push(!success)
		if b.count >= b.cfg.MinSamples && b.failureRate() > b.cfg.FailureRateThreshold {
			b.openedAt = time.Now()
			b.transition(StateOpen)
		}
	}
}

func (b *Breaker) push(failed bool) {
	if b.count == len(b.window) {
		if b.window[b.head] {
			b.failures--
		}
	} else {
		b.count++
	}
	b.window[b.head] = failed
	if failed {
		b.failures++
	}
	b.head = (b.head + 1) % len(b.window)
}

func (b *Breaker) reset() {
	b.window = make([]bool, b.cfg.WindowSize)
	b.head = 0
	b.count = 0
	b.failures = 0
	b.probes = 0
}

func (b *Breaker) failureRate() float64 {
	if b.count == 0 {
		return 0
	}
	return float64(b.failures) / float64(b.count) * 100
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:         b.state.String(),
		BufferedCalls: b.count,
		Successes:     b.count - b.failures,
		Failures:      b.failures,
		Rejected:      b.rejected,
		FailureRate:   b.failureRate(),
	}
}
