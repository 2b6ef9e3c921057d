package transcription

import (
	"sync"

	"go.uber.org/zap"

	"github.com/recapd/recapd/internal/infrastructure/cache"
	"github.com/recapd/recapd/internal/infrastructure/external/speech"
)

// Hub hands out the single orchestrator for each recording identity.
// Per-recording state never crosses between orchestrators; the only
// shared surface is the sidecar store's filesystem.
type Hub struct {
	engine         Engine
	fallback       speech.Recognizer
	prober         speech.DurationProber
	store          *cache.SidecarStore
	summarizer     Summarizer
	chatReset      ChatReset
	sink           EventSink
	logger         *zap.Logger
	minCharsPerSec float64

	mu            sync.Mutex
	orchestrators map[string]*Orchestrator
}

// HubOptions bundles the hub's injected collaborators
type HubOptions struct {
	Engine         Engine
	Fallback       speech.Recognizer
	Prober         speech.DurationProber
	Store          *cache.SidecarStore
	Summarizer     Summarizer
	ChatReset      ChatReset
	Sink           EventSink
	Logger         *zap.Logger
	MinCharsPerSec float64
}

// NewHub creates an orchestrator registry
func NewHub(opts HubOptions) *Hub {
	return &Hub{
		engine:         opts.Engine,
		fallback:       opts.Fallback,
		prober:         opts.Prober,
		store:          opts.Store,
		summarizer:     opts.Summarizer,
		chatReset:      opts.ChatReset,
		sink:           opts.Sink,
		logger:         opts.Logger,
		minCharsPerSec: opts.MinCharsPerSec,
		orchestrators:  make(map[string]*Orchestrator),
	}
}

// Get returns the orchestrator for identity, creating it on first use
func (h *Hub) Get(identity string) *Orchestrator {
	h.mu.Lock()
	defer h.mu.Unlock()
	if o, ok := h.orchestrators[identity]; ok {
		return o
	}
	o := NewOrchestrator(Options{
		Identity:       identity,
		Engine:         h.engine,
		Fallback:       h.fallback,
		Prober:         h.prober,
		Store:          h.store,
		Summarizer:     h.summarizer,
		ChatReset:      h.chatReset,
		Sink:           h.sink,
		Logger:         h.logger,
		MinCharsPerSec: h.minCharsPerSec,
	})
	h.orchestrators[identity] = o
	return o
}
