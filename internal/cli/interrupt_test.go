package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{
			name:   "with custom writer",
			writer: &bytes.Buffer{},
		},
		{
			name:   "with nil writer",
			writer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer)
			assert.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.interrupted)
		})
	}
}

func TestHandleInterrupts_ContextStartsLive(t *testing.T) {
	handler := NewInterruptHandler(&bytes.Buffer{})

	ctx := handler.HandleInterrupts(context.Background(), true)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}
	assert.False(t, handler.WasInterrupted())
}

func TestShowInterruptMessage(t *testing.T) {
	tests := []struct {
		name        string
		expected    []string
		notExpected []string
		inBatch     bool
	}{
		{
			name:    "batch run",
			inBatch: true,
			expected: []string{
				"Resolution interrupted!",
				"Completed rows were written",
				"catres batch",
			},
			notExpected: []string{},
		},
		{
			name:    "single resolution",
			inBatch: false,
			expected: []string{
				"Resolution interrupted!",
			},
			notExpected: []string{
				"Completed rows were written",
				"catres batch",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			handler := &InterruptHandler{
				writer:  &output,
				inBatch: tt.inBatch,
			}

			handler.showInterruptMessage()

			outputStr := output.String()
			for _, expected := range tt.expected {
				assert.Contains(t, outputStr, expected)
			}
			for _, notExpected := range tt.notExpected {
				assert.NotContains(t, outputStr, notExpected)
			}
		})
	}
}

func TestShowInterruptMessage_OnlyOnce(t *testing.T) {
	var output bytes.Buffer
	handler := &InterruptHandler{writer: &output}

	handler.mu.Lock()
	if !handler.interrupted {
		handler.interrupted = true
		handler.showInterruptMessage()
	}
	handler.mu.Unlock()

	handler.mu.Lock()
	if !handler.interrupted {
		handler.showInterruptMessage()
	}
	handler.mu.Unlock()

	count := strings.Count(output.String(), "Resolution interrupted!")
	assert.Equal(t, 1, count)
	assert.True(t, handler.WasInterrupted())
}
