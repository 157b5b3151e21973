// Package batch packs variable-sized content units into request
// batches that respect a model's effective token budget.
//
// Packing is greedy over the items in their given order: each item is
// tentatively added to the current batch, the full prompt is assembled
// and estimated, and the batch is closed when the next item would push
// the estimate past the effective limit. An item that cannot fit a
// batch even alone is summarized by truncation and committed as a
// singleton, since content units cannot be split.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/slate-ai/slate/token"
	"github.com/slate-ai/slate/types"
)

// SummaryCharLimit is the character budget an oversize item is
// truncated to before being committed as a singleton batch.
const SummaryCharLimit = 2000

// summaryMarker is appended to truncated item text so downstream
// consumers can tell a summary from full content.
const summaryMarker = "...\n[truncated summary]"

// Item is one content unit to pack: a stable identifier plus its text.
// Items are packed in slice order.
type Item struct {
	ID   string
	Text string
}

// PackedBatch is one self-contained group of content units sized to fit
// a single request.
//
// IDs preserves the original item order. Contents maps each assigned ID
// to its text, which may be a truncated summary for oversize items.
type PackedBatch struct {
	IDs      []string
	Contents map[string]string
}

// Packer packs items into budget-respecting batches using a token
// estimator.
//
// Thread Safety: Packer is safe for concurrent use; it holds no
// per-call state.
type Packer struct {
	est    *token.Estimator
	logger *slog.Logger
}

// Option is a functional option for configuring a Packer.
type Option func(*Packer)

// New creates a packer around the given estimator.
func New(est *token.Estimator, opts ...Option) *Packer {
	p := &Packer{
		est:    est,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithLogger sets the logger used for estimation-fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Packer) {
		p.logger = logger
	}
}

// Pack splits items into an ordered sequence of batches, each
// satisfying the model's effective token budget.
//
// Rules:
//   - No items: empty batch list.
//   - No declared input limit: one batch containing every item
//     unmodified.
//   - An item that exceeds the budget on its own is truncated to
//     SummaryCharLimit characters and committed as a singleton batch.
//
// Estimation failures never abort packing; see estimateOrFallback.
func (p *Packer) Pack(ctx context.Context, items []Item, sharedContext string, cfg types.ModelConfig) []PackedBatch {
	if len(items) == 0 {
		return []PackedBatch{}
	}

	limits := token.EffectiveLimits(cfg.MaxInputTokens, cfg.SafetyMarginTokens)
	if limits.Effective == nil {
		// No budget to enforce.
		all := newBatch()
		for _, it := range items {
			all.add(it.ID, it.Text)
		}
		return []PackedBatch{*all}
	}
	effective := *limits.Effective

	var batches []PackedBatch
	cur := newBatch()

	for _, it := range items {
		for {
			prompt := assemblePrompt(sharedContext, cur.withItem(it))
			estimate := p.estimateOrFallback(ctx, cfg, prompt)

			if estimate <= effective {
				cur.add(it.ID, it.Text)
				break
			}

			if len(cur.IDs) > 0 {
				// Close the current batch and re-evaluate this item
				// against an empty one.
				batches = append(batches, *cur)
				cur = newBatch()
				continue
			}

			// The item alone exceeds the budget and cannot be split
			// further: commit a truncated summary as a singleton.
			single := newBatch()
			single.add(it.ID, summarize(it.Text))
			batches = append(batches, *single)
			p.logger.Warn("content unit exceeds token budget, committed as truncated singleton",
				"id", it.ID,
				"effective_limit", effective,
			)
			break
		}
	}

	if len(cur.IDs) > 0 {
		batches = append(batches, *cur)
	}
	return batches
}

// estimateOrFallback resolves an estimate through the fallback chain:
// the model's configured family, then the heuristic family, then
// max(len(prompt)/3, 1). Packing never aborts on estimation failure.
func (p *Packer) estimateOrFallback(ctx context.Context, cfg types.ModelConfig, prompt string) int {
	r := p.est.EstimateText(ctx, cfg, prompt)
	if r.Tokens != nil {
		return *r.Tokens
	}

	p.logger.Warn("primary token estimation failed, retrying with heuristic",
		"model", cfg.Model,
		"family", string(cfg.Estimator),
		"error", r.Err,
	)

	fallbackCfg := cfg
	fallbackCfg.Estimator = types.EstimatorHeuristic
	r = p.est.EstimateText(ctx, fallbackCfg, prompt)
	if r.Tokens != nil {
		return *r.Tokens
	}

	p.logger.Warn("heuristic estimation failed, using length-based fallback",
		"model", cfg.Model,
	)
	n := len(prompt) / 3
	if n < 1 {
		n = 1
	}
	return n
}

func newBatch() *PackedBatch {
	return &PackedBatch{Contents: make(map[string]string)}
}

func (b *PackedBatch) add(id, text string) {
	b.IDs = append(b.IDs, id)
	b.Contents[id] = text
}

// withItem returns the batch's items plus the tentative one, for prompt
// assembly, without mutating the batch.
func (b *PackedBatch) withItem(it Item) []Item {
	items := make([]Item, 0, len(b.IDs)+1)
	for _, id := range b.IDs {
		items = append(items, Item{ID: id, Text: b.Contents[id]})
	}
	return append(items, it)
}

// assemblePrompt builds the full prompt a batch will produce: the
// shared context, the assigned-unit list, and each unit's content in a
// tagged block. The estimate is computed against this final assembled
// form, not the raw item text.
func assemblePrompt(sharedContext string, items []Item) string {
	var sb strings.Builder
	sb.WriteString(sharedContext)

	sb.WriteString("\n\nASSIGNED:\n")
	for _, it := range items {
		sb.WriteString("- ")
		sb.WriteString(it.ID)
		sb.WriteString("\n")
	}

	sb.WriteString("\nFILES:\n")
	for _, it := range items {
		fmt.Fprintf(&sb, "<file path=%q>\n%s\n</file>\n", it.ID, it.Text)
	}
	return sb.String()
}

// summarize truncates oversize item text to SummaryCharLimit bytes and
// appends the truncation marker. The cut backs up to a rune boundary
// so multi-byte text is never split mid-rune.
func summarize(text string) string {
	if len(text) <= SummaryCharLimit {
		return text
	}
	cut := SummaryCharLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + summaryMarker
}
