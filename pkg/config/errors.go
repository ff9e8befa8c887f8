package config

import "fmt"

// ConfigurationError is a missing or invalid option.
type ConfigurationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config: %s=%q: %s", e.Key, e.Value, e.Reason)
}

// ResourceError is a dictionary, model or gazetteer that cannot be read.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
