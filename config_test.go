package slate

import (
	"testing"
)

func TestDefaultHTTPClient(t *testing.T) {
	c := DefaultHTTPClient()
	if c == nil {
		t.Fatal("DefaultHTTPClient() returned nil")
	}
	if c.Timeout != DefaultHTTPTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultHTTPTimeout)
	}
}

func TestDefaultHTTPClientIndependentInstances(t *testing.T) {
	a := DefaultHTTPClient()
	b := DefaultHTTPClient()
	if a == b {
		t.Error("DefaultHTTPClient() returned a shared instance")
	}
}
