package ofs

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOfUnwrapsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("reading container: %w", ErrNotFound)
	c, ok := CodeOf(wrapped)
	if !ok || c != NotFound {
		t.Errorf("CodeOf(wrapped) = (%v, %v), want (%v, true)", c, ok, NotFound)
	}
}

func TestCodeOfNil(t *testing.T) {
	c, ok := CodeOf(nil)
	if !ok || c != Success {
		t.Errorf("CodeOf(nil) = (%v, %v), want (%v, true)", c, ok, Success)
	}
}

func TestCodeOfForeignError(t *testing.T) {
	c, ok := CodeOf(errors.New("boom"))
	if ok {
		t.Errorf("CodeOf(foreign error) reported ok=true, want false")
	}
	if c != IOError {
		t.Errorf("CodeOf(foreign error) = %v, want %v as the fallback", c, IOError)
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := Err(NotFound, "no such file %q", "/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(err, ErrNotFound) = false, want true")
	}
	if errors.Is(err, ErrNoSpace) {
		t.Errorf("errors.Is(err, ErrNoSpace) = true, want false")
	}
}
