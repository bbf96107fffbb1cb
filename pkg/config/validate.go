package config

import "fmt"

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every FieldError found while validating a
// Config.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:", len(e.Errors))
	for _, fe := range e.Errors {
		msg += "\n  - " + fe.Error()
	}
	return msg
}

// Validate checks cfg for structural errors beyond what ApplyDefaults fills
// in. Provider binding validity (duplicate ids, empty model lists, and so
// on) is enforced separately by provider.NewRegistry, since it applies
// equally to configs loaded from a file and registries built in tests.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listenAddress", Message: "must not be empty"})
	}
	if len(cfg.Providers) == 0 {
		errs = append(errs, FieldError{Field: "providers", Message: "at least one provider binding is required"})
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{Field: "logging.level", Message: "must be one of debug, info, warn, error"})
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{Field: "logging.format", Message: "must be one of json, text"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
