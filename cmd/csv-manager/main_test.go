package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
		wantJSON  bool
	}{
		{envLocal, true, false},
		{envDev, true, true},
		{envProd, false, true},
		{"staging", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			logger := setupLogger(tt.env)
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			_, isJSON := logger.Handler().(*slog.JSONHandler)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}
