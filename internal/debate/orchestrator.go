package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/symposium-ai/symposium/internal/config"
	"github.com/symposium-ai/symposium/internal/llm"
	"github.com/symposium-ai/symposium/internal/models"
	"github.com/symposium-ai/symposium/internal/observability/metrics"
)

// Request errors abort a debate before any round starts.
var (
	ErrEmptyPrompt       = errors.New("prompt must not be empty")
	ErrNoProviders       = errors.New("at least one provider must be enabled")
	ErrNoUsableProviders = errors.New("none of the enabled providers is configured")
)

// Round count bounds. Requests outside the range are clamped, not
// rejected.
const (
	MinRounds = 1
	MaxRounds = 3
)

// State names the coordinator's position in its lifecycle. Used for
// logging; the transitions follow
// Idle → (RoundActive → RoundSettling → RoundComplete)* →
// AllRoundsComplete → Moderating → Finished, with Failed terminal for
// request errors.
type State string

const (
	StateIdle              State = "idle"
	StateRoundActive       State = "round_active"
	StateRoundSettling     State = "round_settling"
	StateRoundComplete     State = "round_complete"
	StateAllRoundsComplete State = "all_rounds_complete"
	StateModerating        State = "moderating"
	StateFinished          State = "finished"
	StateFailed            State = "failed"
)

// Request describes one debate. Immutable once handed to Run: the
// round count and provider set are fixed for the whole request.
type Request struct {
	Prompt          string
	Language        string // optional hint; wins over detection verbatim
	Rounds          int
	Providers       []models.ProviderID
	ModeratorEngine string // provider id or "auto"
	ModeratorStyle  ModeratorStyle
}

// Result is the completed debate: the full transcript plus the
// moderator verdict. Produced exactly once per request.
type Result struct {
	ID            string
	Prompt        string
	Language      string
	Serious       bool
	Rounds        int
	Providers     []models.ProviderID
	Transcript    []TranscriptEntry
	ModeratorText string
	ModeratorErr  string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Orchestrator runs debates: N provider calls concurrently per round,
// fragments streamed to the sink as they arrive, a hard barrier between
// rounds, then one moderator synthesis call.
type Orchestrator struct {
	registry *llm.Registry
	limiter  *llm.CallLimiter
	metrics  *metrics.Collector
	logger   *logrus.Logger
	cfg      config.DebateConfig
}

// NewOrchestrator wires the orchestrator with its collaborators.
func NewOrchestrator(
	registry *llm.Registry,
	limiter *llm.CallLimiter,
	collector *metrics.Collector,
	logger *logrus.Logger,
	cfg config.DebateConfig,
) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		limiter:  limiter,
		metrics:  collector,
		logger:   logger,
		cfg:      cfg,
	}
}

// panelist pairs a requested provider with its resolved adapter. An
// unresolved panelist keeps its resolution error and fails every round
// without aborting the debate.
type panelist struct {
	id       models.ProviderID
	provider llm.Provider
	err      error
}

// session holds the state of one Run. The transcript has a single
// writer: all appends happen on the session goroutine at round
// settlement.
type session struct {
	o          *Orchestrator
	req        *Request
	id         string
	rounds     int
	sink       Sink
	transcript *Transcript
	language   string
	serious    bool
	state      State
	logger     *logrus.Entry
}

func (s *session) transition(st State) {
	s.state = st
	s.logger.WithField("state", st).Debug("Coordinator state transition")
}

// Run conducts the debate and streams events to sink. The returned
// error is non-nil only for request errors, which abort before any
// round starts; provider and moderator failures are isolated and
// reported through the event stream and the Result.
func (o *Orchestrator) Run(ctx context.Context, req *Request, sink Sink) (*Result, error) {
	startedAt := time.Now()
	id := uuid.New().String()
	log := o.logger.WithField("debate_id", id)

	rounds := req.Rounds
	if rounds < MinRounds {
		rounds = MinRounds
	}
	if rounds > MaxRounds {
		rounds = MaxRounds
	}

	if err := o.validate(req); err != nil {
		log.WithError(err).Warn("Rejecting debate request")
		o.metrics.DebatesFinished.WithLabelValues("rejected").Inc()
		sink.Emit(Event{Type: EventError, DebateID: id, Message: err.Error()})
		return nil, err
	}

	panel := make([]panelist, 0, len(req.Providers))
	usable := 0
	for _, pid := range req.Providers {
		p, err := o.registry.Get(pid)
		if err == nil {
			usable++
		}
		panel = append(panel, panelist{id: pid, provider: p, err: err})
	}
	if usable == 0 {
		log.Warn("Rejecting debate request: no usable providers")
		o.metrics.DebatesFinished.WithLabelValues("rejected").Inc()
		sink.Emit(Event{Type: EventError, DebateID: id, Message: ErrNoUsableProviders.Error()})
		return nil, ErrNoUsableProviders
	}

	o.metrics.DebatesStarted.Inc()

	serious := IsSeriousTopic(req.Prompt)
	language := ResolveLanguage(req.Prompt, req.Language)

	s := &session{
		o:          o,
		req:        req,
		id:         id,
		rounds:     rounds,
		sink:       sink,
		transcript: &Transcript{},
		language:   language,
		serious:    serious,
		state:      StateIdle,
		logger:     log,
	}

	log.WithFields(logrus.Fields{
		"providers": req.Providers,
		"rounds":    rounds,
		"language":  language,
		"serious":   serious,
	}).Info("Starting debate")

	sink.Emit(Event{
		Type:      EventMeta,
		DebateID:  id,
		Providers: req.Providers,
		Rounds:    rounds,
		Language:  language,
		Serious:   serious,
		Style:     string(req.ModeratorStyle),
	})

	for r := 1; r <= rounds; r++ {
		s.runRound(ctx, r, panel)
	}
	s.transition(StateAllRoundsComplete)
	o.metrics.RoundsPerDebate.Observe(float64(rounds))

	s.transition(StateModerating)
	moderatorText, moderatorErr := s.moderate(ctx)
	status := "completed"
	errText := ""
	if moderatorErr != nil {
		status = "moderation_failed"
		errText = moderatorErr.Error()
		log.WithError(moderatorErr).Error("Moderation failed")
		sink.Emit(Event{
			Type:     EventError,
			DebateID: id,
			Message:  fmt.Sprintf("moderation failed: %v", moderatorErr),
		})
	}
	o.metrics.DebatesFinished.WithLabelValues(status).Inc()

	s.transition(StateFinished)
	sink.Emit(Event{Type: EventDone, DebateID: id})
	log.WithField("status", status).Info("Debate finished")

	return &Result{
		ID:            id,
		Prompt:        req.Prompt,
		Language:      language,
		Serious:       serious,
		Rounds:        rounds,
		Providers:     req.Providers,
		Transcript:    s.transcript.Entries(),
		ModeratorText: moderatorText,
		ModeratorErr:  errText,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
	}, nil
}

func (o *Orchestrator) validate(req *Request) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(req.Providers) == 0 {
		return ErrNoProviders
	}
	return nil
}

// runRound executes one round: every panelist in parallel, fragments
// forwarded as they arrive, then a hard barrier before the round's
// answers become part of the transcript. No panelist sees another's
// output from the same round.
func (s *session) runRound(ctx context.Context, round int, panel []panelist) {
	s.transition(StateRoundActive)
	s.sink.Emit(Event{Type: EventRoundStart, DebateID: s.id, Round: round})

	type outcome struct {
		provider models.ProviderID
		text     string
		err      error
	}
	outcomes := make(chan outcome, len(panel))

	var wg sync.WaitGroup
	for _, member := range panel {
		wg.Add(1)
		go func(m panelist) {
			defer wg.Done()

			if m.err != nil {
				s.emitProviderError(m.id, round, m.err)
				outcomes <- outcome{provider: m.id, err: m.err}
				return
			}

			prompt := BuildPrompt(s.req.Prompt, round, s.transcript.ContextFor(m.id, round), m.id, s.serious)
			system := BuildSystemPrompt(m.id, s.language, s.serious)

			text, err := s.streamCall(ctx, m.provider, prompt, system, func(fragment string) {
				s.sink.Emit(Event{Type: EventChunk, DebateID: s.id, Provider: m.id, Round: round, Text: fragment})
			})
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"provider": m.id,
					"round":    round,
				}).Warn("Provider task failed")
				s.emitProviderError(m.id, round, err)
				outcomes <- outcome{provider: m.id, err: err}
				return
			}

			s.sink.Emit(Event{Type: EventMessage, DebateID: s.id, Provider: m.id, Round: round, Text: text})
			outcomes <- outcome{provider: m.id, text: text}
		}(member)
	}

	// Barrier: no round advances while any task is outstanding.
	wg.Wait()
	close(outcomes)
	s.transition(StateRoundSettling)

	collected := make(map[models.ProviderID]outcome, len(panel))
	for out := range outcomes {
		collected[out.provider] = out
	}

	// Single-writer append, in panel order for determinism. This is
	// where the round becomes visible to subsequent rounds.
	for _, member := range panel {
		out := collected[member.id]
		entry := TranscriptEntry{Provider: member.id, Round: round, Text: out.text}
		if out.err != nil {
			entry.Text = fmt.Sprintf("[%s was unavailable this round: %v]", member.id.DisplayName(), out.err)
			entry.Failed = true
		}
		s.transcript.Append(entry)
	}

	s.transition(StateRoundComplete)
	s.sink.Emit(Event{Type: EventRoundEnd, DebateID: s.id, Round: round})
}

func (s *session) emitProviderError(id models.ProviderID, round int, err error) {
	s.sink.Emit(Event{
		Type:     EventProviderError,
		DebateID: s.id,
		Provider: id,
		Round:    round,
		Message:  err.Error(),
	})
}

// streamCall issues one bounded provider call and forwards each
// fragment through emit. A provider exceeding the configured timeout is
// forced to fail so a hung call cannot stall the round barrier forever.
func (s *session) streamCall(ctx context.Context, provider llm.Provider, prompt, system string, emit func(string)) (string, error) {
	o := s.o

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.ProviderTimeout)
	defer cancel()

	if err := o.limiter.Acquire(callCtx); err != nil {
		o.metrics.ProviderErrors.WithLabelValues(string(provider.Name())).Inc()
		return "", fmt.Errorf("waiting for a call slot: %w", err)
	}
	defer o.limiter.Release()

	start := time.Now()
	req := &models.LLMRequest{
		ID:           uuid.New().String(),
		Prompt:       prompt,
		SystemPrompt: system,
		Temperature:  o.cfg.AnswerTemperature,
		MaxTokens:    o.cfg.MaxAnswerTokens,
	}

	ch, err := provider.GenerateStream(callCtx, req)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues(string(provider.Name())).Inc()
		return "", err
	}

	var buf strings.Builder
	for {
		select {
		case frag, ok := <-ch:
			if !ok {
				o.metrics.ProviderLatency.WithLabelValues(string(provider.Name())).Observe(time.Since(start).Seconds())
				return buf.String(), nil
			}
			if frag.Err != nil {
				o.metrics.ProviderErrors.WithLabelValues(string(provider.Name())).Inc()
				return "", frag.Err
			}
			buf.WriteString(frag.Text)
			emit(frag.Text)
		case <-callCtx.Done():
			o.metrics.ProviderErrors.WithLabelValues(string(provider.Name())).Inc()
			return "", fmt.Errorf("provider call aborted: %w", callCtx.Err())
		}
	}
}

// moderate runs the synthesis step once, after the last round. The
// moderator engine is resolved independently of the debate panel and
// falls back to any configured adapter.
func (s *session) moderate(ctx context.Context) (string, error) {
	if s.transcript.Len() == 0 {
		return "", errors.New("no transcript entries to moderate")
	}

	provider, err := s.o.resolveModerator(s.req.ModeratorEngine)
	if err != nil {
		return "", err
	}

	s.logger.WithField("moderator", provider.Name()).Info("Starting moderation")

	prompt := BuildModeratorPrompt(s.req.Prompt, s.transcript.Entries(), s.req.ModeratorStyle, s.serious)
	system := BuildModeratorSystemPrompt(s.language)

	text, err := s.streamCall(ctx, provider, prompt, system, func(fragment string) {
		s.sink.Emit(Event{Type: EventModeratorChunk, DebateID: s.id, Text: fragment})
	})
	if err != nil {
		return "", err
	}

	s.sink.Emit(Event{Type: EventModeratorMessage, DebateID: s.id, Text: text})
	return text, nil
}

// resolveModerator picks the adapter that executes the synthesis call.
// "auto", an unknown identifier, or an unconfigured engine all fall
// back to any available adapter; only an empty registry is an error.
func (o *Orchestrator) resolveModerator(engine string) (llm.Provider, error) {
	if engine == "" || engine == "auto" {
		return o.registry.Any()
	}
	id, err := models.ParseProviderID(engine)
	if err != nil {
		return o.registry.Any()
	}
	p, err := o.registry.Get(id)
	if err != nil {
		return o.registry.Any()
	}
	return p, nil
}
