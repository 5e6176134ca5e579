package entity

// FetchOutcome is a tagged result for one upstream fetch: either a value or a
// human-readable error message. It lets the dashboard render partial data when
// only some endpoints fail.
type FetchOutcome[T any] struct {
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Outcome wraps a successful fetch result.
func Outcome[T any](v T) FetchOutcome[T] {
	return FetchOutcome[T]{Data: &v}
}

// OutcomeErr wraps a failed fetch. A nil error yields a zero outcome.
func OutcomeErr[T any](err error) FetchOutcome[T] {
	if err == nil {
		return FetchOutcome[T]{}
	}
	return FetchOutcome[T]{Error: err.Error()}
}

// OK reports whether the fetch succeeded.
func (o FetchOutcome[T]) OK() bool {
	return o.Data != nil && o.Error == ""
}
