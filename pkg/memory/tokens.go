package memory

import (
	"github.com/pkoukk/tiktoken-go"
)

// Estimator estimates the token footprint of a text. The contract is a
// conservative, cheap, monotonic estimator: longer text never estimates
// fewer tokens.
type Estimator interface {
	// EstimateTokens returns the estimated token count for text.
	EstimateTokens(text string) int
}

// HeuristicEstimator is the default provider-independent estimator:
// one token per four characters, plus one.
type HeuristicEstimator struct{}

// EstimateTokens implements Estimator.
func (HeuristicEstimator) EstimateTokens(text string) int {
	return len(text)/4 + 1
}

// TiktokenEstimator counts tokens with a real BPE encoding. It satisfies
// the same contract as the heuristic and can replace it when windows are
// assembled for a specific model family.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEstimator creates an estimator backed by the named encoding,
// for example "cl100k_base". An empty name selects cl100k_base.
func NewTiktokenEstimator(encodingName string) (*TiktokenEstimator, error) {
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &TiktokenEstimator{encoding: encoding}, nil
}

// EstimateTokens implements Estimator.
func (e *TiktokenEstimator) EstimateTokens(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}
