package prior

import (
	"fmt"
)

// ConfigError reports an ill-formed prior specification. It is fatal for
// the prior it describes.
type ConfigError struct {
	ParameterID string // empty when not constructed from a table row
	Field       string // offending column, e.g. "objectivePriorParameters"
	Message     string
	Err         error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	switch {
	case e.ParameterID != "" && e.Field != "":
		return fmt.Sprintf("prior of %s (%s): %s", e.ParameterID, e.Field, msg)
	case e.ParameterID != "":
		return fmt.Sprintf("prior of %s: %s", e.ParameterID, msg)
	}
	return "prior: " + msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}
