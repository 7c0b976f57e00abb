package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/vyrodovalexey/linkrouter/internal/util"
)

const (
	urlPathTag  = "urlpath"
	urlPathText = "{0} must start with /"
)

// ValidationError is one configuration problem at a YAML path.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// Is makes ValidationErrors match util.ErrConfigInvalid.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// PathChecker checks a route path template beyond its syntax tags.
type PathChecker func(path string) error

// Validator validates route tables.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	checkPath  PathChecker
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithPathChecker runs check on every route path.
func WithPathChecker(check PathChecker) ValidatorOption {
	return func(v *Validator) {
		v.checkPath = check
	}
}

// NewValidator creates a route table validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, translator)

	// Report YAML names rather than Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(urlPathTag, func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "/")
	})
	_ = validate.RegisterTranslation(urlPathTag, translator,
		func(t ut.Translator) error { return t.Add(urlPathTag, urlPathText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(urlPathTag, fe.Field())
			return s
		},
	)

	v := &Validator{
		validate:   validate,
		translator: translator,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateConfig validates a route table with default options.
func ValidateConfig(cfg *RouterConfig) error {
	return NewValidator().Validate(cfg)
}

// Validate checks struct tags and the semantic rules of a route table
// and returns ValidationErrors when anything is wrong. It is safe for
// concurrent use.
func (v *Validator) Validate(cfg *RouterConfig) error {
	errs := make(ValidationErrors, 0)

	if cfg == nil {
		errs.add("", "configuration is nil")
		return errs
	}

	v.validateTags(cfg, &errs)
	validateRoot(cfg, &errs)
	v.validateRoutes(cfg.Spec.Routes, &errs)
	validateServer(cfg.Spec.Server, &errs)
	validateObservability(cfg.Spec.Observability, &errs)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// validateTags runs the struct tag rules.
func (v *Validator) validateTags(cfg *RouterConfig, errs *ValidationErrors) {
	err := v.validate.Struct(cfg)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.add("", err.Error())
		return
	}

	for _, fe := range fieldErrs {
		errs.add(fieldPath(fe.Namespace()), fe.Translate(v.translator))
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return path
}

// validateRoot validates root-level fields.
func validateRoot(cfg *RouterConfig, errs *ValidationErrors) {
	if cfg.APIVersion != "" && !strings.HasPrefix(cfg.APIVersion, APIVersionPrefix) {
		errs.add("apiVersion", "apiVersion must start with '"+APIVersionPrefix+"'")
	}
}

// validateRoutes checks names and that each route is reachable.
func (v *Validator) validateRoutes(routes []RouteConfig, errs *ValidationErrors) {
	names := make(map[string]int, len(routes))

	for i := range routes {
		route := &routes[i]
		path := fmt.Sprintf("spec.routes[%d]", i)

		if route.Name != "" {
			if err := util.ValidateRouteName(route.Name); err != nil {
				errs.add(path+".name", err.Error())
			}
			if first, dup := names[route.Name]; dup {
				errs.add(path+".name",
					fmt.Sprintf("duplicate route name %q (first defined at spec.routes[%d])", route.Name, first))
			} else {
				names[route.Name] = i
			}
		}

		if !route.HasPath() && route.Secondary == "" {
			errs.add(path, "route must define a path or a secondary screen")
		}

		if route.HasPath() && v.checkPath != nil && strings.HasPrefix(route.Path, "/") {
			if err := v.checkPath(route.Path); err != nil {
				errs.add(path+".path", err.Error())
			}
		}

		if !route.HasPath() && len(route.QueryParams) > 0 {
			errs.add(path+".queryParams", "queryParams require a path")
		}
	}
}

// validateServer validates the resolution service settings.
func validateServer(server *ServerConfig, errs *ValidationErrors) {
	if server == nil {
		return
	}

	if server.Listen != "" {
		if err := util.ValidateListenAddress(server.Listen); err != nil {
			errs.add("spec.server.listen", err.Error())
		}
	}

	if server.ShutdownTimeout < 0 {
		errs.add("spec.server.shutdownTimeout", "shutdownTimeout cannot be negative")
	}

	if rl := server.RateLimit; rl != nil && rl.Burst > 0 && float64(rl.Burst) < rl.RPS {
		errs.add("spec.server.rateLimit.burst", "burst must be at least rps")
	}
}

// validateObservability validates logging and tracing settings.
func validateObservability(obs *ObservabilityConfig, errs *ValidationErrors) {
	if obs == nil || obs.Tracing == nil {
		return
	}

	if err := util.ValidateSamplingRate(obs.Tracing.SamplingRate); err != nil {
		errs.add("spec.observability.tracing.samplingRate", err.Error())
	}
}

// add appends a validation error.
func (e *ValidationErrors) add(path, message string) {
	*e = append(*e, ValidationError{
		Path:    path,
		Message: message,
	})
}
