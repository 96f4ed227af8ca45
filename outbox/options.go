package outbox

// Defaults from spec §6.
const (
	defaultStaticSlotCount      = 3
	defaultDynamicSlotCount     = 3
	defaultMaxDynamicBlocks     = 8
	defaultPayloadMax           = 512
	defaultTopicMax             = 128
	defaultAckTimeoutMS         = 5000
	defaultDynBlockIdleTimeout  = 60000
	defaultControlRingCap       = 8
)

// config holds the resolved compile/init-time constants for a Facade.
type config struct {
	staticSlotCount     int
	dynamicSlotCount    int
	maxDynamicBlocks    int
	payloadMax          int
	topicMax            int
	ackTimeoutMS        int64
	dynBlockIdleTimeout int64
	controlRingCap      int
	controlTimeoutMS    int64
	logger              *Logger
	clock               func() int64
}

// Option configures a Facade. See New.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithStaticSlotCount sets N1, the number of always-resident slots.
func WithStaticSlotCount(n int) Option {
	return optionFunc(func(c *config) { c.staticSlotCount = n })
}

// WithDynamicSlotCount sets N2, the slot count of each dynamic block.
func WithDynamicSlotCount(n int) Option {
	return optionFunc(func(c *config) { c.dynamicSlotCount = n })
}

// WithMaxDynamicBlocks sets B, the maximum number of dynamic blocks.
func WithMaxDynamicBlocks(n int) Option {
	return optionFunc(func(c *config) { c.maxDynamicBlocks = n })
}

// WithPayloadMax sets PAYLOAD_MAX, the payload buffer capacity per slot.
func WithPayloadMax(n int) Option {
	return optionFunc(func(c *config) { c.payloadMax = n })
}

// WithTopicMax sets TOPIC_MAX, the topic buffer capacity per slot.
func WithTopicMax(n int) Option {
	return optionFunc(func(c *config) { c.topicMax = n })
}

// WithAckTimeout sets ACK_TIMEOUT_MS, the duration after which an
// unacknowledged slot is considered timed out by the Sweeper.
func WithAckTimeout(ms int64) Option {
	return optionFunc(func(c *config) { c.ackTimeoutMS = ms })
}

// WithDynBlockIdleTimeout sets DYN_BLOCK_IDLE_TIMEOUT_MS, the duration a
// fully-free DynBlock must remain idle before the Sweeper reclaims it.
func WithDynBlockIdleTimeout(ms int64) Option {
	return optionFunc(func(c *config) { c.dynBlockIdleTimeout = ms })
}

// WithControlRingCapacity sets R, the size of the ControlRing.
func WithControlRingCapacity(n int) Option {
	return optionFunc(func(c *config) { c.controlRingCap = n })
}

// WithControlTimeout sets the expiry duration applied to ControlRing
// entries by the Sweeper. Spec §4.4 names this "control_timeout" without
// giving it a distinct default in §6's configuration table; this module
// defaults it to ACK_TIMEOUT_MS unless overridden.
func WithControlTimeout(ms int64) Option {
	return optionFunc(func(c *config) { c.controlTimeoutMS = ms })
}

// WithLogger attaches a structured logger. Passing nil is equivalent to
// omitting the option: diagnostics are logged to a no-op sink.
func WithLogger(l *Logger) Option {
	return optionFunc(func(c *config) { c.logger = l })
}

// WithClock overrides the monotonic microsecond clock used for
// timestamps and timeout comparisons. Intended for tests that need to
// advance time deterministically; production callers should omit this.
func WithClock(now func() int64) Option {
	return optionFunc(func(c *config) { c.clock = now })
}

// resolveOptions applies Option values over the spec §6 defaults.
func resolveOptions(opts []Option) *config {
	c := &config{
		staticSlotCount:     defaultStaticSlotCount,
		dynamicSlotCount:    defaultDynamicSlotCount,
		maxDynamicBlocks:    defaultMaxDynamicBlocks,
		payloadMax:          defaultPayloadMax,
		topicMax:            defaultTopicMax,
		ackTimeoutMS:        defaultAckTimeoutMS,
		dynBlockIdleTimeout: defaultDynBlockIdleTimeout,
		controlRingCap:      defaultControlRingCap,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.apply(c)
	}
	if c.logger == nil {
		c.logger = noopLogger()
	}
	if c.controlTimeoutMS == 0 {
		c.controlTimeoutMS = c.ackTimeoutMS
	}
	return c
}
