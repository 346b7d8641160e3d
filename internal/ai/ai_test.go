package ai

import (
	"context"
	"testing"
)

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestFactorySignature(t *testing.T) {
	var f Factory = NewGemini
	if f == nil {
		t.Fatal("NewGemini should satisfy Factory")
	}
}
