package outcome

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		res := Wrap(42, nil)

		if !res.Ok() {
			t.Fatalf("expected ok result, got error %v", res.Err)
		}

		if res.Value != 42 {
			t.Errorf("expected value 42, got %d", res.Value)
		}
	})

	t.Run("Error", func(t *testing.T) {
		failure := errors.New("boom")
		res := Wrap(0, failure)

		if res.Ok() {
			t.Fatal("expected error result")
		}

		if !errors.Is(res.Err, failure) {
			t.Errorf("expected wrapped error, got %v", res.Err)
		}
	})

	t.Run("ErrorWithFallback", func(t *testing.T) {
		res := Wrap(99, errors.New("boom"), 7)

		if res.Ok() {
			t.Fatal("expected error result")
		}

		if res.Value != 7 {
			t.Errorf("expected fallback value 7, got %d", res.Value)
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		v, err := Value("hello").Unwrap()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "hello" {
			t.Errorf("expected hello, got %s", v)
		}
	})
}

func TestGuard(t *testing.T) {
	t.Run("PassesThroughValue", func(t *testing.T) {
		res := Guard(func() (string, error) { return "ok", nil })

		if !res.Ok() || res.Value != "ok" {
			t.Errorf("expected ok result, got (%q, %v)", res.Value, res.Err)
		}
	})

	t.Run("PassesThroughError", func(t *testing.T) {
		failure := errors.New("query failed")
		res := Guard(func() (int, error) { return 0, failure })

		if !errors.Is(res.Err, failure) {
			t.Errorf("expected query error, got %v", res.Err)
		}
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		res := Guard(func() (int, error) { panic("unreachable state") })

		if res.Ok() {
			t.Fatal("expected error result from panic")
		}
	})

	t.Run("RecoversPanicWithFallback", func(t *testing.T) {
		res := Guard(func() (int, error) { panic("unreachable state") }, 13)

		if res.Value != 13 {
			t.Errorf("expected fallback value 13, got %d", res.Value)
		}
	})
}
