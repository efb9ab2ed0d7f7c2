// Package docqa provides the PDF question answering service application.
package docqa

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	cacheopts "github.com/kart-io/docqa/pkg/options/cache"
	httpopts "github.com/kart-io/docqa/pkg/options/http"
	llmopts "github.com/kart-io/docqa/pkg/options/llm"
	logopts "github.com/kart-io/docqa/pkg/options/logger"
)

// Options contains all service options.
type Options struct {
	// HTTP contains the HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains the logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Chat contains the chat provider configuration.
	Chat *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// QA contains pipeline configuration.
	QA *QAOptions `json:"qa" mapstructure:"qa"`

	// Cache contains cache configuration.
	Cache *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// QAOptions contains the question answering pipeline configuration.
type QAOptions struct {
	// TopK is the number of passages fed to the generator.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// MaxUploadMB bounds accepted PDF uploads, in MiB.
	MaxUploadMB int `json:"max-upload-mb" mapstructure:"max-upload-mb"`

	// QueryTimeout bounds query processing, in seconds.
	QueryTimeout int `json:"query-timeout" mapstructure:"query-timeout"`

	// DataDir is the directory for uploaded PDFs. Empty uses the
	// system temp directory.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// PromptTemplate overrides the default answer prompt.
	PromptTemplate string `json:"prompt-template" mapstructure:"prompt-template"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP: httpopts.NewOptions(),
		Log:  logopts.NewOptions(),
		Chat: llmopts.NewChatOptions(),
		QA: &QAOptions{
			TopK:         10,
			MaxUploadMB:  10,
			QueryTimeout: 60,
		},
		Cache:           cacheopts.NewOptions(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// AddFlags registers all option flags.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Chat.AddFlags(fs)
	o.Cache.AddFlags(fs)

	fs.IntVar(&o.QA.TopK, "qa.top-k", o.QA.TopK, "Number of passages fed to the generator")
	fs.IntVar(&o.QA.MaxUploadMB, "qa.max-upload-mb", o.QA.MaxUploadMB, "Maximum PDF upload size in MiB")
	fs.IntVar(&o.QA.QueryTimeout, "qa.query-timeout", o.QA.QueryTimeout, "Query timeout in seconds")
	fs.StringVar(&o.QA.DataDir, "qa.data-dir", o.QA.DataDir, "Directory for uploaded PDFs (empty = system temp)")
	fs.StringVar(&o.QA.PromptTemplate, "qa.prompt-template", o.QA.PromptTemplate, "Override the answer prompt template")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")
}

// Complete fills in derived defaults.
func (o *Options) Complete() error {
	if err := o.HTTP.Complete(); err != nil {
		return err
	}
	return o.Cache.Complete()
}

// Validate checks all options.
func (o *Options) Validate() error {
	if err := o.HTTP.Validate(); err != nil {
		return err
	}
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if err := o.Chat.Validate(); err != nil {
		return err
	}
	if err := o.Cache.Validate(); err != nil {
		return err
	}

	if o.QA.TopK <= 0 {
		return fmt.Errorf("qa.top-k must be positive, got %d", o.QA.TopK)
	}
	if o.QA.MaxUploadMB <= 0 {
		return fmt.Errorf("qa.max-upload-mb must be positive, got %d", o.QA.MaxUploadMB)
	}
	if o.QA.QueryTimeout <= 0 {
		return fmt.Errorf("qa.query-timeout must be positive, got %d", o.QA.QueryTimeout)
	}
	if o.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown-timeout must be positive, got %s", o.ShutdownTimeout)
	}
	return nil
}
