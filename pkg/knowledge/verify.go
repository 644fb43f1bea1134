package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ValidateKnowledge checks a catalog item for internal plausibility.
//
// When no reasoning provider is configured the item is accepted
// optimistically with high confidence. With a reasoner, the item's content
// is assessed by the model and the structured verdict is returned.
func (m *Module) ValidateKnowledge(ctx context.Context, itemID string) (*ValidationResult, error) {
	const op = "ValidateKnowledge"

	m.mu.RLock()
	item, ok := m.items[itemID]
	m.mu.RUnlock()
	if !ok {
		return nil, NewError(op, fmt.Errorf("%w: item %s", ErrNotFound, itemID))
	}

	if m.reasoner == nil {
		return &ValidationResult{
			ItemID:      itemID,
			IsValid:     true,
			Confidence:  0.9,
			Issues:      []string{},
			Explanation: "No reasoning provider configured; item accepted.",
		}, nil
	}

	prompt := fmt.Sprintf(`Assess the following knowledge item for internal consistency and plausibility.

Content: %s
Source: %s
Stated confidence: %.2f

Respond with a JSON object only, with keys:
  "is_valid" (boolean), "confidence" (number 0-1),
  "issues" (array of strings), "explanation" (string)`,
		item.Content, item.Source, item.Confidence)

	raw, err := m.reasoner.Generate(ctx, prompt)
	if err != nil {
		return nil, NewError(op, fmt.Errorf("%w: %w", ErrProvider, err))
	}

	var parsed struct {
		IsValid     bool     `json:"is_valid"`
		Confidence  float64  `json:"confidence"`
		Issues      []string `json:"issues"`
		Explanation string   `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, NewError(op, fmt.Errorf("%w: unparseable verdict: %w", ErrProvider, err))
	}

	result := &ValidationResult{
		ItemID:      itemID,
		IsValid:     parsed.IsValid,
		Confidence:  parsed.Confidence,
		Issues:      parsed.Issues,
		Explanation: parsed.Explanation,
	}
	if result.Issues == nil {
		result.Issues = []string{}
	}
	return result, nil
}

// FactCheck assesses a free-form statement against the catalog.
//
// The statement is first matched semantically against stored items; the
// top matches become the cited sources. Without a reasoning provider the
// statement is accepted optimistically.
func (m *Module) FactCheck(ctx context.Context, statement string) (*FactCheckResult, error) {
	const op = "FactCheck"

	if statement == "" {
		return nil, NewError(op, fmt.Errorf("%w: empty statement", ErrValidation))
	}

	response, err := m.QueryKnowledge(ctx, statement, WithTopK(3))
	if err != nil {
		return nil, NewError(op, err)
	}
	sources := make([]string, 0, len(response.Items))
	evidence := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		sources = append(sources, item.ID)
		evidence = append(evidence, item.Content)
	}

	if m.reasoner == nil {
		return &FactCheckResult{
			Statement:   statement,
			IsFactual:   true,
			Confidence:  0.8,
			Sources:     sources,
			Explanation: "Statement appears to be factual based on available knowledge.",
		}, nil
	}

	prompt := fmt.Sprintf(`Fact-check the statement below against the supporting evidence.

Statement: %s

Evidence:
%s

Respond with a JSON object only, with keys:
  "is_factual" (boolean), "confidence" (number 0-1), "explanation" (string)`,
		statement, strings.Join(evidence, "\n"))

	raw, err := m.reasoner.Generate(ctx, prompt)
	if err != nil {
		return nil, NewError(op, fmt.Errorf("%w: %w", ErrProvider, err))
	}

	var parsed struct {
		IsFactual   bool    `json:"is_factual"`
		Confidence  float64 `json:"confidence"`
		Explanation string  `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, NewError(op, fmt.Errorf("%w: unparseable verdict: %w", ErrProvider, err))
	}

	return &FactCheckResult{
		Statement:   statement,
		IsFactual:   parsed.IsFactual,
		Confidence:  parsed.Confidence,
		Sources:     sources,
		Explanation: parsed.Explanation,
	}, nil
}

// CheckConsistency checks a set of statements for mutual contradictions.
//
// Without a reasoning provider the set is reported consistent.
func (m *Module) CheckConsistency(ctx context.Context, statements []string) (*ConsistencyResult, error) {
	const op = "CheckConsistency"

	if len(statements) == 0 {
		return nil, NewError(op, fmt.Errorf("%w: no statements", ErrValidation))
	}

	if m.reasoner == nil {
		return &ConsistencyResult{
			IsConsistent: true,
			Conflicts:    []string{},
			Confidence:   0.9,
			Explanation:  "No reasoning provider configured; no conflicts detected.",
		}, nil
	}

	var sb strings.Builder
	for i, s := range statements {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}
	prompt := fmt.Sprintf(`Determine whether the following statements contradict each other.

%s
Respond with a JSON object only, with keys:
  "is_consistent" (boolean), "conflicts" (array of strings),
  "confidence" (number 0-1), "explanation" (string)`, sb.String())

	raw, err := m.reasoner.Generate(ctx, prompt)
	if err != nil {
		return nil, NewError(op, fmt.Errorf("%w: %w", ErrProvider, err))
	}

	var parsed struct {
		IsConsistent bool     `json:"is_consistent"`
		Conflicts    []string `json:"conflicts"`
		Confidence   float64  `json:"confidence"`
		Explanation  string   `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, NewError(op, fmt.Errorf("%w: unparseable verdict: %w", ErrProvider, err))
	}

	result := &ConsistencyResult{
		IsConsistent: parsed.IsConsistent,
		Conflicts:    parsed.Conflicts,
		Confidence:   parsed.Confidence,
		Explanation:  parsed.Explanation,
	}
	if result.Conflicts == nil {
		result.Conflicts = []string{}
	}
	return result, nil
}

// extractJSON trims a markdown code fence and any surrounding prose so the
// body can be unmarshaled. Models frequently wrap JSON in ```json fences.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			return s[i : j+1]
		}
	}
	return s
}
