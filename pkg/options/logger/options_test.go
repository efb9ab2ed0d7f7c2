package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"json format", func(o *Options) { o.Format = "json" }, false},
		{"bad level", func(o *Options) { o.Level = "loud" }, true},
		{"bad format", func(o *Options) { o.Format = "xml" }, true},
		{"no outputs", func(o *Options) { o.OutputPaths = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	o := NewOptions()
	o.Format = "json"
	o.AddInitialField("service.name", "docqa-test")

	log, err := o.Build()
	require.NoError(t, err)
	require.NotNil(t, log)

	// Must not panic.
	log.Sugar().Infow("build smoke test", "key", "value")
}
