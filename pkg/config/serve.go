package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

// ServeConfig configures the inspect server. It lives under the "serve"
// key of a config file.
type ServeConfig struct {
	Listen      string `json:"listen"`
	MaxBodySize int64  `json:"max_body_size"`
	Timeout     string `json:"timeout"`
	CaptureFile string `json:"capture_file"`
	Template    string `json:"template"`
	S3          *S3    `json:"s3,omitempty"`
}

// S3 names where captured requests are archived.
type S3 struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
}

// Serve decodes the "serve" path of val. A value without one yields an
// empty ServeConfig.
func Serve(val cue.Value) (*ServeConfig, error) {
	v := val.LookupPath(cue.ParsePath("serve"))
	if !v.Exists() {
		return &ServeConfig{}, nil
	}
	cfg, err := decode[ServeConfig](v)
	if err != nil {
		return nil, fmt.Errorf("serve: %w", err)
	}
	return cfg, nil
}

// LoadServe loads path and returns its serve section.
func LoadServe(path string) (*ServeConfig, error) {
	val, err := LoadValue(path)
	if err != nil {
		return nil, err
	}
	return Serve(val)
}
