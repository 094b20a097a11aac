// Package dialogue orchestrates model-to-model dialogue runs and their
// archival.
package dialogue

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Merlinthewizord/Scintara/internal/archive"
	"github.com/Merlinthewizord/Scintara/internal/events"
	"github.com/Merlinthewizord/Scintara/internal/llm"
	"github.com/Merlinthewizord/Scintara/internal/memory"
	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
	"github.com/Merlinthewizord/Scintara/pkg/metrics"
)

// systemPrompt frames both sides of the dialogue.
const systemPrompt = "You are one of two AIs in a focused dialogue. You are trying to get to the " +
	"bottom of what enlightenment is and how to achieve it. Be curious, rigorous, " +
	"and concise. Ask clarifying questions and build on the other AI's points. " +
	"Avoid roleplay, stay practical and philosophical. You may include ASCII art " +
	"sparingly when it adds clarity or emphasis."

// openingPrompt seeds role A's history and instructs it to open the dialogue.
const openingPrompt = "You are AI-1 in a dialogue with AI-2. Your shared goal is to get to " +
	"the bottom of what enlightenment is and how to achieve it. Start by " +
	"offering a crisp working definition and one concrete practice."

// fallbackTopic keys the memory lookup when a history is still empty.
const fallbackTopic = "enlightenment"

const (
	defaultExchanges = 6
	minExchanges     = 1
	maxExchanges     = 40
)

// Config holds dialogue engine settings.
type Config struct {
	AutoArchive  bool
	Exchanges    int
	ModelA       string
	ModelB       string
	DefaultModel string
	MaxTokens    int
	Temperature  float64
	TopP         float64
}

// Engine runs N alternating exchanges between two model configurations and
// archives the resulting transcript.
type Engine struct {
	cfg    Config
	client llm.Client
	mem    *memory.Augmenter
	store  archive.Store
	pub    *events.Publisher
	log    *logger.Logger
	tracer trace.Tracer

	// runMu serializes dialogue runs: a scheduled tick and an HTTP trigger
	// must never overlap.
	runMu sync.Mutex
}

// NewEngine creates a dialogue engine with its collaborators injected.
func NewEngine(cfg Config, client llm.Client, mem *memory.Augmenter, store archive.Store, pub *events.Publisher, log *logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		client: client,
		mem:    mem,
		store:  store,
		pub:    pub,
		log:    log,
		tracer: otel.Tracer("dialogue"),
	}
}

// Enabled reports whether automatic generation is enabled.
func (e *Engine) Enabled() bool {
	return e.cfg.AutoArchive
}

// ClampExchanges normalizes an exchange count: values inside [1, 40] pass
// through, everything else (including NaN) defaults to 6.
func ClampExchanges(v float64) int {
	if math.IsNaN(v) {
		return defaultExchanges
	}
	n := int(v)
	if n < minExchanges || n > maxExchanges {
		return defaultExchanges
	}
	return n
}

// NormalizeModel lower-cases and trims a model name and resolves it through
// three tiers: the explicit name, the per-role default, then the global
// default. It returns an UnsupportedModelError only when all three tiers
// fail the family check, so a completion call is never attempted with an
// invalid name.
func NormalizeModel(name, roleDefault, globalDefault, familyPrefix string) (string, error) {
	for _, candidate := range []string{name, roleDefault, globalDefault} {
		normalized := strings.ToLower(strings.TrimSpace(candidate))
		if normalized != "" && strings.HasPrefix(normalized, familyPrefix) {
			return normalized, nil
		}
	}
	return "", &llm.UnsupportedModelError{Model: name}
}

// Run executes numExchanges alternating exchanges between modelA and modelB
// and returns the ordered transcript. The two roles keep independent
// histories that cross-feed: each side's assistant turn becomes the other
// side's user turn, so each model is conditioned on its own local log of the
// shared channel. A run is atomic from the caller's perspective: it either
// returns a full transcript or an error, and nothing is archived here.
func (e *Engine) Run(ctx context.Context, numExchanges int, modelA, modelB string) ([]model.TranscriptEntry, error) {
	prefix := e.client.FamilyPrefix()
	modelA, err := NormalizeModel(modelA, e.cfg.ModelA, e.cfg.DefaultModel, prefix)
	if err != nil {
		return nil, err
	}
	modelB, err = NormalizeModel(modelB, e.cfg.ModelB, e.cfg.DefaultModel, prefix)
	if err != nil {
		return nil, err
	}

	historyA := []llm.ChatMessage{{Role: "user", Content: openingPrompt}}
	var historyB []llm.ChatMessage
	var transcript []model.TranscriptEntry

	for i := 0; i < numExchanges; i++ {
		responseA, err := e.takeTurn(ctx, modelA, historyA)
		if err != nil {
			return nil, err
		}
		transcript = append(transcript, model.TranscriptEntry{Speaker: modelA, Text: responseA})
		historyA = append(historyA, llm.ChatMessage{Role: "assistant", Content: responseA})
		historyB = append(historyB, llm.ChatMessage{Role: "user", Content: responseA})

		responseB, err := e.takeTurn(ctx, modelB, historyB)
		if err != nil {
			return nil, err
		}
		transcript = append(transcript, model.TranscriptEntry{Speaker: modelB, Text: responseB})
		historyA = append(historyA, llm.ChatMessage{Role: "user", Content: responseB})
		historyB = append(historyB, llm.ChatMessage{Role: "assistant", Content: responseB})
	}

	return transcript, nil
}

// takeTurn fetches memory context keyed on the side's last history entry and
// requests one completion for it.
func (e *Engine) takeTurn(ctx context.Context, modelName string, history []llm.ChatMessage) (string, error) {
	query := fallbackTopic
	if len(history) > 0 {
		query = history[len(history)-1].Content
	}
	memoryContext := e.mem.FetchContext(ctx, query)

	start := time.Now()
	resp, err := e.client.Complete(ctx, &llm.CompletionRequest{
		Model:         modelName,
		System:        systemPrompt,
		MemoryContext: memoryContext,
		Messages:      history,
		MaxTokens:     e.cfg.MaxTokens,
		Temperature:   e.cfg.Temperature,
		TopP:          e.cfg.TopP,
	})
	if err != nil {
		metrics.RecordCompletion(modelName, "error", time.Since(start).Seconds(), 0, 0)
		return "", err
	}
	metrics.RecordCompletion(modelName, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	return resp.Content, nil
}

// ToArchiveMessages flattens a transcript into archive message format:
// even-indexed entries become user turns, odd-indexed entries assistant
// turns, with the original speaker label kept on each message. The
// alternation is an archive-format convention, not a claim about true
// conversational role; Speaker tells a reader which side produced what.
func ToArchiveMessages(transcript []model.TranscriptEntry) []model.Message {
	messages := make([]model.Message, len(transcript))
	for i, entry := range transcript {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		messages[i] = model.Message{
			Role:    role,
			Content: entry.Text,
			Speaker: entry.Speaker,
		}
	}
	return messages
}

// GenerateAndArchive runs one full dialogue and appends it to the archive.
// It returns (nil, nil) when automatic generation is disabled. The memory
// write-back is best-effort; the archive append is not.
func (e *Engine) GenerateAndArchive(ctx context.Context, trigger string) (*model.ConversationRecord, error) {
	if !e.cfg.AutoArchive {
		return nil, nil
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	ctx, span := e.tracer.Start(ctx, "dialogue.generate_and_archive",
		trace.WithAttributes(attribute.String("trigger", trigger)))
	defer span.End()

	start := time.Now()
	numExchanges := ClampExchanges(float64(e.cfg.Exchanges))

	transcript, err := e.Run(ctx, numExchanges, e.cfg.ModelA, e.cfg.ModelB)
	if err != nil {
		metrics.RecordDialogueRun(trigger, "error", time.Since(start).Seconds())
		span.RecordError(err)
		return nil, err
	}

	e.mem.Persist(ctx, transcript)

	rec, err := e.store.Append(ctx, ToArchiveMessages(transcript), map[string]any{
		"model_a":       e.cfg.ModelA,
		"model_b":       e.cfg.ModelB,
		"num_exchanges": numExchanges,
	})
	if err != nil {
		metrics.RecordDialogueRun(trigger, "error", time.Since(start).Seconds())
		span.RecordError(err)
		return nil, err
	}

	e.pub.RecordCreated(rec)

	metrics.RecordDialogueRun(trigger, "success", time.Since(start).Seconds())
	e.log.Info("archive entry created",
		zap.String("id", rec.ID),
		zap.Int("num_exchanges", numExchanges),
		zap.String("trigger", trigger),
	)
	return rec, nil
}
