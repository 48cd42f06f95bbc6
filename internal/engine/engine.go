/*
Package engine implements learning and reply inference over a knowledge store.

Learn records a scored (prompt, response) association. Reply finds every known
prompt containing any substring of the input, pools the statistics of their
responses and returns the response with the highest Laplace-smoothed success
estimate, (score + 1) / (trials + 2).

Matching is a deliberate brute-force scan, O(S²·P) for an input of S code
points against P bytes of stored prompts.
*/
package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/khanglvm/speakeasy/internal/knowledge"
	"go.uber.org/zap"
)

// DefaultScore is the score used when a caller does not supply one.
const DefaultScore = 1.0

// Engine answers and learns prompts against a knowledge store.
type Engine struct {
	store  knowledge.Store
	logger *zap.Logger
}

// New creates an engine over store.
func New(store knowledge.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// Clamp bounds score to [0, 1]. NaN is treated as 0.
func Clamp(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Estimate returns the add-one smoothed success rate of an entry. For
// 0 <= Score <= Trials it lies strictly inside (0, 1).
func Estimate(e knowledge.Entry) float64 {
	return (e.Score + 1) / (float64(e.Trials) + 2)
}

// Learn records response as a reply to prompt with the given score.
// Callers map booleans to 1 (good) and 0 (bad); values outside [0, 1] are
// clamped. Invalid UTF-8 in prompt or response is stored as U+FFFD.
func (e *Engine) Learn(prompt, response string, score float64) error {
	prompt, response = validUTF8(prompt), validUTF8(response)
	effective := Clamp(score)

	k, err := e.load()
	if err != nil {
		return fmt.Errorf("learn: %w", err)
	}

	responses, ok := k.Get(prompt)
	if ok {
		responses = responses.Clone()
	} else {
		responses = knowledge.NewResponses()
	}

	observed := knowledge.Entry{Score: effective, Trials: 1}
	if prev, seen := responses.Get(response); seen {
		observed = prev.Add(observed)
	}
	responses.Put(response, observed)

	// Only the touched prompt is written back, so prompts saved by other
	// writers since our load are left alone.
	partial := knowledge.New()
	partial.Set(prompt, responses)
	if err := e.store.Save(partial); err != nil {
		return fmt.Errorf("learn: %w", err)
	}

	e.logger.Debug("learned response",
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("score", effective),
		zap.Float64("total_score", observed.Score),
		zap.Int("trials", observed.Trials),
	)
	return nil
}

// Reply returns the best known response to prompt, or prompt itself when
// nothing has been learned.
func (e *Engine) Reply(prompt string) (string, error) {
	k, err := e.load()
	if err != nil {
		return "", fmt.Errorf("reply: %w", err)
	}

	candidates := Rank(k, validUTF8(prompt))
	best, ok := Best(candidates)
	if !ok {
		e.logger.Debug("no candidates, echoing prompt", zap.Int("known_prompts", k.Len()))
		return prompt, nil
	}

	e.logger.Debug("selected response",
		zap.Int("candidates", len(candidates)),
		zap.Float64("estimate", best.Estimate),
	)
	return best.Response, nil
}

// Explain returns every candidate for prompt in accumulation order.
func (e *Engine) Explain(prompt string) ([]Candidate, error) {
	k, err := e.load()
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	return Rank(k, validUTF8(prompt)), nil
}

// validUTF8 replaces each run of invalid UTF-8 bytes with U+FFFD. Stored keys
// go through JSON, which would otherwise rewrite them behind our back.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func (e *Engine) load() (*knowledge.Knowledge, error) {
	k, err := e.store.Load()
	if errors.Is(err, knowledge.ErrCorrupt) {
		e.logger.Warn("knowledge store is corrupt, treating as empty", zap.Error(err))
	}
	return knowledge.Recover(k, err)
}

// Candidate is a response pooled across every matching known prompt.
type Candidate struct {
	Response string          `json:"response"`
	Entry    knowledge.Entry `json:"entry"`
	Estimate float64         `json:"estimate"`
}

// Rank pools response statistics for prompt. For each substring of prompt,
// longest first, every known prompt containing it contributes all of its
// responses; repeated contributions add elementwise. Candidates are returned
// in the order their response was first contributed.
func Rank(k *knowledge.Knowledge, prompt string) []Candidate {
	if k.Len() == 0 {
		return nil
	}

	known := k.Prompts()
	hits := make(map[string][]*knowledge.Responses)
	index := make(map[string]int)
	var candidates []Candidate

	eachSubstring(prompt, func(sub string) {
		matched, ok := hits[sub]
		if !ok {
			for _, kp := range known {
				if strings.Contains(kp, sub) {
					r, _ := k.Get(kp)
					matched = append(matched, r)
				}
			}
			hits[sub] = matched
		}

		for _, r := range matched {
			r.Each(func(response string, entry knowledge.Entry) {
				if i, seen := index[response]; seen {
					candidates[i].Entry = candidates[i].Entry.Add(entry)
					return
				}
				index[response] = len(candidates)
				candidates = append(candidates, Candidate{Response: response, Entry: entry})
			})
		}
	})

	for i := range candidates {
		candidates[i].Estimate = Estimate(candidates[i].Entry)
	}
	return candidates
}

// Best returns the first candidate with the maximum estimate.
func Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Estimate > best.Estimate {
			best = c
		}
	}
	return best, true
}
