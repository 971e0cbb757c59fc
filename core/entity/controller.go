package entity

import (
	"context"
	"sort"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-sync/core"
)

const (
	msgSuccess       = "Changes saved."
	msgInvalid       = "Please correct the highlighted fields."
	msgInvalidAction = "This action is not available."
	msgTransport     = "Could not complete the request. Please try again."
	msgUnexpected    = "Something went wrong. Please reload the page."
	msgConfirm       = "Are you sure? This action cannot be undone."

	maxBodyExcerpt = 512
)

var newRequestID = func() string { return uuid.New().String() } // mockable

// State is the step of one mutation.
type State int

const (
	Idle State = iota
	Sending
	Reconciling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Sending:
		return "SENDING"
	case Reconciling:
		return "RECONCILING"
	default:
		return "UNKNOWN"
	}
}

// Pages gives the controller the page state of an entity kind.
type Pages interface {
	Page(kind string) (*Page, error)
}

// Outcome reports what one mutation did.
type Outcome struct {
	Trace    []State
	Action   string
	Key      Key
	Row      *RowView // set after a successful upsert
	Envelope *Envelope
	Err      error // nil on success
}

// Aborted reports whether the user declined a confirmation or cancelled a prompt.
func (o Outcome) Aborted() bool { return errors.Cause(o.Err) == core.ErrUserAborted }

// Sent reports whether a request was issued.
func (o Outcome) Sent() bool {
	for _, s := range o.Trace {
		if s == Sending {
			return true
		}
	}
	return false
}

type ControllerDeps struct {
	Registry   *Registry
	Pages      Pages
	Submitter  Submitter
	Notifier   core.NotificationSink
	Dialog     core.Dialog
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Timeout    time.Duration
	Durations  core.NotifyConfig
}

// Controller submits entity mutations and reconciles pages from the server's answers.
// One mutation runs IDLE -> SENDING -> (RECONCILING ->) IDLE; nothing is retried.
type Controller struct {
	registry   *Registry
	pages      Pages
	submitter  Submitter
	notifier   core.NotificationSink
	dialog     core.Dialog
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	timeout    time.Duration
	durations  core.NotifyConfig
}

func NewController(deps ControllerDeps) *Controller {
	return &Controller{
		registry:   deps.Registry,
		pages:      deps.Pages,
		submitter:  deps.Submitter,
		notifier:   deps.Notifier,
		dialog:     deps.Dialog,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
		timeout:    deps.Timeout,
		durations:  deps.Durations,
	}
}

// Handle runs one mutation for the submitted form.
// The form stays open on every path but success, so the user can correct and resubmit.
// Fields failing the client rules are annotated before any request is sent, so the server's
// own field errors only show up for values the client accepts (e.g. a duplicate email).
func (c *Controller) Handle(ctx context.Context, form *Form) Outcome {
	out := Outcome{Trace: []State{Idle}}

	spec, err := c.registry.Lookup(form.ID)
	if err != nil {
		return c.unexpected(out, err)
	}
	page, err := c.pages.Page(spec.Kind)
	if err != nil {
		return c.unexpected(out, errors.Wrapf(err, "getting %s page", spec.Kind))
	}

	values := form.Values()
	name := values[ActionField]
	if name == "" {
		name = spec.DefaultAction(values)
	}
	action, ok := spec.Action(name)
	if !ok {
		c.notify(msgInvalidAction, core.SeverityError)
		out.Err = errors.Wrapf(ErrInvalidAction, "%s: %q", spec.Kind, name)
		return out
	}
	out.Action = action.Name

	if action.Destructive && !c.ConfirmDestructive(action.Confirm) {
		out.Err = core.ErrUserAborted
		return out
	}
	if action.Secret != nil {
		secret, ok := c.askSecret(action.Secret.Prompt)
		if !ok {
			out.Err = core.ErrUserAborted
			return out
		}
		values[action.Secret.Field] = secret
	}

	form.ClearAnnotations()
	fldErrs, err := c.precheck(spec, action, values)
	if err != nil {
		return c.unexpected(out, err)
	}
	if len(fldErrs) > 0 {
		vErr := &core.ValidationError{Err: errors.New(msgInvalid), Fields: fldErrs}
		form.Annotate(vErr.FieldMap())
		c.notify(msgInvalid, core.SeverityError)
		out.Err = vErr
		return out
	}

	out.Trace = append(out.Trace, Sending)
	env, err := c.send(ctx, spec, action, spec.Endpoint, values, page.CSRFToken())
	if err != nil {
		out.Trace = append(out.Trace, Idle)
		c.logTransport(spec, action, err)
		c.notify(msgTransport, core.SeverityError)
		out.Err = err
		return out
	}
	out.Envelope = env

	if !env.OK() {
		out.Trace = append(out.Trace, Idle)
		out.Err = c.rejected(form, env)
		return out
	}

	out.Trace = append(out.Trace, Reconciling)
	switch action.Effect {
	case EffectUpsert:
		key, _ := RecordKey(spec.KeyFields, env.Data) // presence checked by send
		row := page.Reconcile(key, env.Data)
		out.Key, out.Row = key, &row
	case EffectRemove:
		key, ok := RecordKey(spec.KeyFields, env.Data)
		if !ok {
			key, _ = ValuesKey(spec.KeyFields, values)
		}
		page.Remove(key)
		out.Key = key
	}
	out.Trace = append(out.Trace, Idle)

	msg := env.Message
	if msg == "" {
		msg = action.SuccessMessage
	}
	if msg == "" {
		msg = msgSuccess
	}
	c.notify(msg, core.SeveritySuccess)
	form.Close()
	return out
}

// Submit sends the form to endpoint and returns the parsed envelope.
// The form's action must belong to its entity's enumerated set.
// Any failure to obtain a well-formed envelope is a *core.TransportError.
func (c *Controller) Submit(ctx context.Context, form *Form, endpoint, csrfToken string) (*Envelope, error) {
	spec, err := c.registry.Lookup(form.ID)
	if err != nil {
		return nil, err
	}
	values := form.Values()
	action, ok := spec.Action(values[ActionField])
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAction, "%s: %q", spec.Kind, values[ActionField])
	}
	return c.send(ctx, spec, action, endpoint, values, csrfToken)
}

// ConfirmDestructive asks the user to confirm an irreversible action.
// Without a dialog nothing can be confirmed.
func (c *Controller) ConfirmDestructive(prompt string) bool {
	if c.dialog == nil {
		return false
	}
	if prompt == "" {
		prompt = msgConfirm
	}
	return c.dialog.Confirm(prompt)
}

func (c *Controller) askSecret(prompt string) (string, bool) {
	if c.dialog == nil {
		return "", false
	}
	return c.dialog.Secret(prompt)
}

func (c *Controller) precheck(spec *Specialization, action Action, values map[string]string) ([]core.FieldError, error) {
	rules := spec.RulesFor(action)
	if action.Secret != nil && action.Secret.Rule != "" {
		merged := make(map[string]string, len(rules)+1)
		for k, v := range rules {
			merged[k] = v
		}
		merged[action.Secret.Field] = action.Secret.Rule
		rules = merged
	}

	fldErrs, err := core.ValidateValues(c.validate, c.translator, values, rules)
	if err != nil {
		return nil, errors.Wrap(err, "validating form")
	}
	if spec.Check != nil && len(fldErrs) == 0 {
		fldErrs = append(fldErrs, spec.Check(action.Name, values)...)
	}
	return fldErrs, nil
}

func (c *Controller) send(ctx context.Context, spec *Specialization, action Action, endpoint string, values map[string]string, csrfToken string) (*Envelope, error) {
	values[ActionField] = action.Name
	values[CSRFField] = csrfToken
	sub := Submission{Endpoint: endpoint, Values: values, RequestID: newRequestID()}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.submitter.Submit(ctx, sub)
	if err != nil {
		return nil, &core.TransportError{Endpoint: endpoint, RequestID: sub.RequestID, Err: err}
	}

	tErr := &core.TransportError{
		Endpoint:   endpoint,
		RequestID:  sub.RequestID,
		StatusCode: res.StatusCode,
		Body:       excerpt(res.Body),
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		tErr.Err = errors.Errorf("unexpected status %d", res.StatusCode)
		return nil, tErr
	}
	env, err := ParseEnvelope(res.Body)
	if err != nil {
		tErr.Err = err
		return nil, tErr
	}
	if err = env.check(action, spec.KeyFields); err != nil {
		tErr.Err = err
		return nil, tErr
	}
	return env, nil
}

// rejected annotates the form with the envelope's field errors and reports the global message.
func (c *Controller) rejected(form *Form, env *Envelope) error {
	msg := env.Message
	if len(env.Errors) == 0 {
		c.notify(msg, core.SeverityError)
		return core.NewDomainError(msg)
	}

	form.Annotate(env.Errors)
	if msg == "" {
		msg = msgInvalid
	}
	fldErrs := make([]core.FieldError, 0, len(env.Errors))
	for f, e := range env.Errors {
		fldErrs = append(fldErrs, core.FieldError{Field: f, Error: e})
	}
	sort.Slice(fldErrs, func(i, j int) bool { return fldErrs[i].Field < fldErrs[j].Field })

	c.notify(msg, core.SeverityError)
	return &core.ValidationError{Err: errors.New(msg), Fields: fldErrs}
}

func (c *Controller) unexpected(out Outcome, err error) Outcome {
	if c.logger != nil {
		c.logger.Error("entity mutation failed", err)
	}
	c.notify(msgUnexpected, core.SeverityError)
	out.Err = err
	return out
}

func (c *Controller) logTransport(spec *Specialization, action Action, err error) {
	if c.logger == nil {
		return
	}
	extras := map[string]interface{}{"kind": spec.Kind, "action": action.Name}
	if tErr, ok := errors.Cause(err).(*core.TransportError); ok {
		extras["endpoint"] = tErr.Endpoint
		extras["request_id"] = tErr.RequestID
		extras["status"] = tErr.StatusCode
		extras["body"] = tErr.Body
	}
	c.logger.Error("submitting "+spec.Kind, err, extras)
}

func (c *Controller) notify(msg string, sev core.Severity) {
	if c.notifier == nil || msg == "" {
		return
	}
	var d time.Duration
	switch sev {
	case core.SeveritySuccess:
		d = c.durations.SuccessDuration
	case core.SeverityError:
		d = c.durations.ErrorDuration
	default:
		d = c.durations.InfoDuration
	}
	c.notifier.Show(msg, sev, d)
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt]) + "..."
	}
	return string(body)
}
