// Package form implements the submission lifecycle shared by the
// login, registration, and shortening forms: validation gates the
// network, at most one request is in flight per form instance, and
// every settle re-arms the form.
package form

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"qlink-client/api"
	"qlink-client/guard"
	"qlink-client/model"
	"qlink-client/notify"
	"qlink-client/validator"
)

var (
	// ErrSubmissionInFlight is returned when Submit is called while a
	// previous submission has not settled. The new attempt is a no-op.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	// ErrValidationFailed is returned when field validation blocked the
	// submission; no network call was made.
	ErrValidationFailed = errors.New("validation failed")
	// ErrFormClosed is returned after Close; the form instance is gone.
	ErrFormClosed = errors.New("form instance closed")
)

// User-facing outcome messages. Fallbacks match the deployed product.
const (
	fallbackMessage        = "Something went wrong. Please try again later."
	loginFailedMessage     = "Login failed. Please try again."
	registerFailedMessage  = "Registration failed. Please check your input and try again."
	loginSuccessMessage    = "Login successful!"
	registerSuccessMessage = "Account created! Please sign in."
	shortenSuccessMessage  = "Short URL ready!"
)

// API is the slice of the backend client a controller needs.
type API interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) error
	Shorten(ctx context.Context, req model.ShortenRequest) (model.ShortenResponse, error)
}

// Sessions is the single mutation entry point of the session store.
type Sessions interface {
	Set(accessToken, userID string) error
}

// Results receives successful shortening outcomes.
type Results interface {
	Put(originalURL, shortURL string)
}

// Deps wires a controller to its collaborators. Sessions, Results,
// Notifier, and Nav may be nil when the form kind never touches them.
type Deps struct {
	API      API
	Sessions Sessions
	Results  Results
	Notifier *notify.Notifier
	Nav      guard.Navigator
}

// Controller drives one form instance through
// Idle → Submitting → {Succeeded, Failed} → Idle. It is created on
// page mount and closed on navigation away; a response that arrives
// after Close is discarded.
type Controller struct {
	mu          sync.Mutex
	kind        model.FormKind
	fields      map[string]string
	fieldErrors map[string]string
	status      model.FormStatus
	globalError string
	gen         int
	closed      bool

	deps Deps
}

// New creates an idle controller with empty fields.
func New(kind model.FormKind, deps Deps) *Controller {
	return &Controller{
		kind:        kind,
		fields:      make(map[string]string),
		fieldErrors: make(map[string]string),
		deps:        deps,
	}
}

// SetField records a keystroke. Editing a settled form re-arms it to
// Idle and clears the edited field's error, like the web form does.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.fields[name] = value
	delete(c.fieldErrors, name)
	if c.status.Settled() {
		c.status = model.StatusIdle
		c.globalError = ""
	}
}

// State returns a snapshot of the form. The maps are copies; mutating
// them does not affect the controller.
func (c *Controller) State() model.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return model.FormState{
		Fields:      copyMap(c.fields),
		FieldErrors: copyMap(c.fieldErrors),
		Status:      c.status,
		GlobalError: c.globalError,
	}
}

// Reset explicitly re-arms the form: errors are cleared and status
// returns to Idle. Field values are kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.status == model.StatusSubmitting {
		return
	}
	c.fieldErrors = make(map[string]string)
	c.globalError = ""
	c.status = model.StatusIdle
}

// Close tears the instance down. Any in-flight response settles into
// the void: late responses must not mutate state the page no longer
// owns.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.gen++
}

// Submit runs the full lifecycle: validate, issue exactly one external
// request, map the outcome. It blocks until the submission settles;
// run it in a goroutine if the caller must stay responsive. A call
// while another submission is in flight is rejected without side
// effects.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrFormClosed
	}
	if c.status == model.StatusSubmitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}

	c.status = model.StatusValidating
	fields := copyMap(c.fields)

	errs := validator.Validate(c.kind, fields)
	if len(errs) > 0 {
		c.fieldErrors = errs
		c.status = model.StatusIdle
		c.mu.Unlock()

		for _, field := range validator.FieldOrder(c.kind) {
			if msg, ok := errs[field]; ok {
				c.notifyUser(notify.Error, msg)
			}
		}
		return ErrValidationFailed
	}

	// Validation passed with no field errors; only now may the form
	// enter Submitting.
	c.fieldErrors = make(map[string]string)
	c.globalError = ""
	c.status = model.StatusSubmitting
	gen := c.gen
	c.mu.Unlock()

	apply, err := c.dispatch(ctx, fields)
	return c.settle(gen, apply, err)
}

// dispatch issues the single external request for the form kind and
// returns the success side effects to run once the outcome is known to
// still matter.
func (c *Controller) dispatch(ctx context.Context, fields map[string]string) (func(), error) {
	switch c.kind {
	case model.FormLogin:
		resp, err := c.deps.API.Login(ctx, model.LoginRequest{
			Email:    fields[model.FieldEmail],
			Password: fields[model.FieldPassword],
		})
		if err != nil {
			return nil, err
		}
		return func() {
			if c.deps.Sessions != nil {
				if err := c.deps.Sessions.Set(resp.AccessToken, resp.UserID); err != nil {
					log.Error().Err(err).Msg("Failed to persist session")
				}
			}
			c.notifyUser(notify.Success, loginSuccessMessage)
			c.navigate(guard.RouteHome)
		}, nil

	case model.FormRegister:
		err := c.deps.API.Register(ctx, model.RegisterRequest{
			Username: fields[model.FieldUsername],
			Email:    fields[model.FieldEmail],
			Password: fields[model.FieldPassword],
		})
		if err != nil {
			return nil, err
		}
		// Registration does not imply login; no session is written.
		return func() {
			c.notifyUser(notify.Success, registerSuccessMessage)
			c.navigate(guard.RouteLogin)
		}, nil

	case model.FormShorten:
		original := fields[model.FieldURL]
		resp, err := c.deps.API.Shorten(ctx, model.ShortenRequest{OriginalURL: original})
		if err != nil {
			return nil, err
		}
		return func() {
			if c.deps.Results != nil {
				c.deps.Results.Put(original, resp.ShortURL)
			}
			c.notifyUser(notify.Success, shortenSuccessMessage)
		}, nil

	default:
		return nil, errors.New("unknown form kind")
	}
}

// settle maps the outcome onto the state machine. If the instance was
// closed or replaced while the request was in flight, the late
// response is dropped entirely.
func (c *Controller) settle(gen int, apply func(), err error) error {
	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		log.Debug().Str("form", c.kind.String()).Msg("Discarding late submission response")
		return ErrFormClosed
	}

	if err == nil {
		c.status = model.StatusSucceeded
		c.mu.Unlock()
		apply()
		return nil
	}

	message := c.failureMessage(err)
	c.status = model.StatusFailed
	c.globalError = message
	c.mu.Unlock()

	c.notifyUser(notify.Error, message)
	return err
}

// failureMessage picks the user-facing text for a failed submission:
// the server's own message verbatim when it sent one, a per-form
// fallback when the server answered without a message, and the generic
// fallback for transport failures.
func (c *Controller) failureMessage(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return fallbackMessage
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	switch c.kind {
	case model.FormLogin:
		return loginFailedMessage
	case model.FormRegister:
		return registerFailedMessage
	default:
		return fallbackMessage
	}
}

func (c *Controller) notifyUser(kind notify.Kind, message string) {
	if c.deps.Notifier != nil {
		c.deps.Notifier.Publish(kind, message, notify.DefaultDuration)
	}
}

func (c *Controller) navigate(route guard.Route) {
	if c.deps.Nav != nil {
		c.deps.Nav.Navigate(route)
	}
}

func copyMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
