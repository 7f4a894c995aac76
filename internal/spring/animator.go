package spring

// Animator runs at most one spring session at a time. It never blocks and owns
// no goroutines: the host's animation clock calls Tick once per frame.
type Animator struct {
	cfg      Config
	sim      *Simulation
	onUpdate func(value float64)
	onEnd    func()
}

// NewAnimator creates an idle animator. Invalid configs fall back to DefaultConfig.
func NewAnimator(cfg Config) *Animator {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	return &Animator{cfg: cfg}
}

// Config returns the spring parameters used for new sessions.
func (a *Animator) Config() Config { return a.cfg }

// SetConfig changes the parameters used by the next Start. A running session
// keeps its parameters.
func (a *Animator) SetConfig(cfg Config) {
	if cfg.Validate() != nil {
		return
	}
	a.cfg = cfg
}

// Start begins a session from start toward final. A session already in flight
// is dropped without calling its onEnd.
func (a *Animator) Start(start, final float64, onUpdate func(value float64), onEnd func()) {
	a.sim = NewSimulation(a.cfg, start, final)
	a.onUpdate = onUpdate
	a.onEnd = onEnd
}

// Active reports whether a session is in flight.
func (a *Animator) Active() bool { return a.sim != nil }

// Cancel drops the current session without calling onEnd.
func (a *Animator) Cancel() {
	a.sim = nil
	a.onUpdate = nil
	a.onEnd = nil
}

// Tick advances the current session by one frame: onUpdate fires once with
// the new value and, if the spring has settled, onEnd fires right after it.
// Tick returns whether a session is still in flight afterwards.
func (a *Animator) Tick() bool {
	sim := a.sim
	if sim == nil {
		return false
	}

	value, settled := sim.Step()
	onEnd := a.onEnd
	if a.onUpdate != nil {
		a.onUpdate(value)
	}

	// onUpdate may have cancelled or restarted the animator.
	if a.sim != sim {
		return a.sim != nil
	}
	if !settled {
		return true
	}

	a.Cancel()
	if onEnd != nil {
		onEnd()
	}
	return a.sim != nil
}
