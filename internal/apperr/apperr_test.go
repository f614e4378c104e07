package apperr

import (
	"errors"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain stdlib error", errors.New("boom"), KindUnknown},
		{"wrapped transient", Wrap(errors.New("503"), KindTransient, "upstream 5xx"), KindTransient},
		{"new timeout", New(KindTimeout, "deadline exceeded"), KindTimeout},
		{"nil error", nil, KindUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := KindOf(c.err); got != c.want {
				t.Fatalf("KindOf() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{KindTransient, true},
		{KindTimeout, true},
		{KindPermanent, false},
		{KindCircuitOpen, false},
		{KindCancelled, false},
		{KindServiceUnavailable, false},
		{KindUnknown, false},
	}
	for _, c := range cases {
		if got := c.kind.Retryable(); got != c.want {
			t.Errorf("%v.Retryable() = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, KindTransient, "should stay nil"); err != nil {
		t.Fatalf("Wrap(nil, ...) = %v, want nil", err)
	}
}

func TestWithOpPreservesKind(t *testing.T) {
	err := WithOp(New(KindCircuitOpen, "breaker open"), "upstream.Fetch")
	if !Is(err, KindCircuitOpen) {
		t.Fatalf("WithOp changed kind: %v", KindOf(err))
	}
	if got := err.Error(); got != "upstream.Fetch: breaker open" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, KindTransient, "dial failed")
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is did not see through wrapped cause")
	}
}
