// Package http provides HTTP server configuration options.
package http

import (
	"fmt"
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// Options contains HTTP server configuration.
type Options struct {
	// Addr is the listen address, e.g. ":8082".
	Addr string `json:"addr" mapstructure:"addr"`

	// Mode is the gin mode (debug|release|test).
	Mode string `json:"mode" mapstructure:"mode"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`

	// MaxHeaderBytes caps the size of request headers.
	MaxHeaderBytes int `json:"max-header-bytes" mapstructure:"max-header-bytes"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Addr:           ":8082",
		Mode:           gin.ReleaseMode,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   2 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}
}

// AddFlags adds HTTP server flags to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "http.addr", o.Addr, "HTTP server listen address")
	fs.StringVar(&o.Mode, "http.mode", o.Mode, "HTTP server mode (debug|release|test)")
	fs.DurationVar(&o.ReadTimeout, "http.read-timeout", o.ReadTimeout, "HTTP read timeout")
	fs.DurationVar(&o.WriteTimeout, "http.write-timeout", o.WriteTimeout, "HTTP write timeout")
}

// Validate validates the HTTP options.
func (o *Options) Validate() error {
	if o.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if _, _, err := net.SplitHostPort(o.Addr); err != nil {
		return fmt.Errorf("invalid http.addr %q: %w", o.Addr, err)
	}
	switch o.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid http.mode %q", o.Mode)
	}
	return nil
}

// Complete fills in defaults for unset values.
func (o *Options) Complete() error {
	if o.Mode == "" {
		o.Mode = gin.ReleaseMode
	}
	return nil
}
