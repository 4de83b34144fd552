// Package extract turns recognized document text into typed candidate
// fields. Each field extractor is an ordered chain of heuristic strategies;
// the first strategy whose result passes its acceptance predicate wins.
// Later strategies are intentionally lower precision, so the ordering is a
// contract, not an implementation detail.
package extract

// Candidate is the result of one extraction attempt: a typed value plus the
// strategy that produced it, or the not-found sentinel. A candidate is never
// partially valid.
type Candidate[T any] struct {
	Value    T
	Strategy string
	Found    bool
}

type strategy[T any] struct {
	name string
	run  func() (T, bool)
}

// runChain executes strategies in priority order and returns the first
// accepted result.
func runChain[T any](chain []strategy[T]) Candidate[T] {
	for _, s := range chain {
		if v, ok := s.run(); ok {
			return Candidate[T]{Value: v, Strategy: s.name, Found: true}
		}
	}
	return Candidate[T]{}
}
