package reporters

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/classly-hq/classly-networking/internal/fileconf"
	"github.com/go-playground/validator/v10"
)

// Supported reporter types.
const (
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
)

const (
	httpDefaultMethod  = "POST"
	httpDefaultTimeout = 5
)

// ReporterConfig is one sink declared in the reporters file. Exactly the block
// matching Type is required.
type ReporterConfig struct {
	ID      string `json:"id" yaml:"id" validate:"required"`
	Type    string `json:"type" yaml:"type" validate:"required,oneof=http sqs sns pubsub"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	Filter  `yaml:",inline"`

	HTTP   *HTTPConfig   `json:"http" yaml:"http" validate:"required_if=Type http"`
	SQS    *SQSConfig    `json:"sqs" yaml:"sqs" validate:"required_if=Type sqs"`
	SNS    *SNSConfig    `json:"sns" yaml:"sns" validate:"required_if=Type sns"`
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub" validate:"required_if=Type pubsub"`
}

// HTTPConfig posts each report as JSON to a webhook.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url" validate:"required,url"`
	Method         string            `json:"method" yaml:"method" validate:"oneof=POST PUT"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
}

// SQSConfig sends each report to a queue. FIFO queues (".fifo") group
// messages by request id.
type SQSConfig struct {
	QueueURL string `json:"uri" yaml:"uri" validate:"required,url"`
	Region   string `json:"region" yaml:"region" validate:"required"`
}

// SNSConfig publishes each report to a topic. FIFO topics group messages by
// request id.
type SNSConfig struct {
	TopicARN string `json:"topic_arn" yaml:"topic_arn" validate:"required,startswith=arn:"`
	Region   string `json:"region" yaml:"region" validate:"required"`
}

// PubSubConfig publishes each report to a Google Cloud Pub/Sub topic. With
// Ordered set, reports of the same request are delivered in order.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id" validate:"required"`
	Topic           string `json:"topic" yaml:"topic" validate:"required"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Ordered         bool   `json:"ordered" yaml:"ordered"`
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg ReporterConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// ConfigRegistry is the validated content of a reporters file.
type ConfigRegistry struct {
	reporters []ReporterConfig
}

// LoadRegistry loads and validates a reporters file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	var f struct {
		Reporters []ReporterConfig `json:"reporters" yaml:"reporters"`
	}
	if err := fileconf.ReadFile(path, "reporters", &f); err != nil {
		return nil, err
	}
	return newConfigRegistry(f.Reporters)
}

// ParseRegistry builds a ConfigRegistry from raw file content.
func ParseRegistry(raw []byte, ext string) (*ConfigRegistry, error) {
	var f struct {
		Reporters []ReporterConfig `json:"reporters" yaml:"reporters"`
	}
	if err := fileconf.Decode(raw, ext, "reporters", &f); err != nil {
		return nil, err
	}
	return newConfigRegistry(f.Reporters)
}

func newConfigRegistry(cfgs []ReporterConfig) (*ConfigRegistry, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("reporters file contains no reporters entries")
	}
	seen := make(map[string]struct{}, len(cfgs))
	out := make([]ReporterConfig, 0, len(cfgs))
	for i, cfg := range cfgs {
		cfg = normalize(cfg)
		if err := validateConfig(cfg); err != nil {
			return nil, fmt.Errorf("reporters[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate reporter id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		out = append(out, cfg)
	}
	return &ConfigRegistry{reporters: out}, nil
}

// All returns every configured reporter in file order.
func (r *ConfigRegistry) All() []ReporterConfig {
	if r == nil {
		return nil
	}
	return append([]ReporterConfig(nil), r.reporters...)
}

// Enabled returns the reporters not switched off with `enabled: false`.
func (r *ConfigRegistry) Enabled() []ReporterConfig {
	var out []ReporterConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// ByID returns the reporter config with the given id.
func (r *ConfigRegistry) ByID(id string) (ReporterConfig, bool) {
	id = strings.TrimSpace(id)
	for _, cfg := range r.All() {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return ReporterConfig{}, false
}

// normalize trims fields and fills defaults. Blocks are copied so the
// caller's config is never mutated.
func normalize(cfg ReporterConfig) ReporterConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	cfg.Filter = cfg.Filter.normalize()

	if h := cfg.HTTP; h != nil {
		c := *h
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds == 0 {
			c.TimeoutSeconds = httpDefaultTimeout
		}
		headers := make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		c.Headers = headers
		cfg.HTTP = &c
	}
	if q := cfg.SQS; q != nil {
		cfg.SQS = &SQSConfig{QueueURL: strings.TrimSpace(q.QueueURL), Region: strings.TrimSpace(q.Region)}
	}
	if t := cfg.SNS; t != nil {
		cfg.SNS = &SNSConfig{TopicARN: strings.TrimSpace(t.TopicARN), Region: strings.TrimSpace(t.Region)}
	}
	if p := cfg.PubSub; p != nil {
		c := *p
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
	}
	return cfg
}

var validate = newValidator()

// newValidator reports fields by their file names, e.g. "sqs.uri".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateConfig(cfg ReporterConfig) error {
	err := validate.Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch e.Tag() {
		case "required", "required_if":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, e.Param()))
		case "url":
			msgs = append(msgs, field+" must be a valid URL")
		case "startswith":
			msgs = append(msgs, fmt.Sprintf("%s must start with %q", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", field, e.Tag()))
		}
	}
	if cfg.ID == "" {
		return errors.New(strings.Join(msgs, ", "))
	}
	return fmt.Errorf("reporter %q: %s", cfg.ID, strings.Join(msgs, ", "))
}
