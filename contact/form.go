/*
Package contact validates the contact form and pretends to send it.

A submit runs through Validating to either Invalid, where each bad field
gets a message next to it, or Submitting.  Submitting waits out a fixed
delay, resets the form and moves to Success; the success message clears
itself a few seconds later and the form is Idle again.  Nothing is actually
delivered; OnSent is the hook for whoever wants the submission.
*/
package contact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ts4z/brochure/dom"
	"github.com/ts4z/brochure/i18n"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/task"
)

type State int

const (
	Idle State = iota
	Validating
	Invalid
	Submitting
	Success
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Invalid:
		return "invalid"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	DefaultFormID         = "contact-form"
	DefaultSendDelay      = 900 * time.Millisecond
	DefaultStatusDuration = 4000 * time.Millisecond

	InvalidClass    = "invalid"
	FieldErrorClass = "field-error"
	FeedbackClass   = "form-feedback"
)

type Config struct {
	FormID string
	// Fields maps canonical field names to input names.  Defaults to the
	// default language's.
	Fields   map[string]string
	Messages i18n.ContactMessages

	Clock          clockwork.Clock
	SendDelay      time.Duration
	StatusDuration time.Duration

	// OnSent runs with the document lock held once a submission is
	// "delivered".
	OnSent func(model.ContactSubmission)
}

type Form struct {
	ctx  context.Context
	doc  *dom.Document
	conf Config

	form     *dom.Element
	inputs   map[string]*dom.Element
	submit   *dom.Element
	feedback *dom.Element

	mu       sync.Mutex
	state    State
	errs     model.FieldErrors
	status   string
	gen      int
	sending  *task.Task
	clearing *task.Task
}

// Wire finds the form and registers its submit handler.  It returns nil if
// the form or any of its three inputs is missing.  Timers run under ctx;
// cancelling it abandons any send in progress.  Call it with the document
// lock held.
func Wire(ctx context.Context, doc *dom.Document, c Config) *Form {
	if c.FormID == "" {
		c.FormID = DefaultFormID
	}
	if c.Fields == nil {
		c.Fields = i18n.Lookup(i18n.DefaultLang).Fields
	}
	if c.Messages == (i18n.ContactMessages{}) {
		c.Messages = i18n.Lookup(i18n.DefaultLang).Contact
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.SendDelay <= 0 {
		c.SendDelay = DefaultSendDelay
	}
	if c.StatusDuration <= 0 {
		c.StatusDuration = DefaultStatusDuration
	}

	form := doc.GetElementByID(c.FormID)
	if form == nil {
		return nil
	}
	f := &Form{
		ctx:      ctx,
		doc:      doc,
		conf:     c,
		form:     form,
		inputs:   map[string]*dom.Element{},
		submit:   form.QuerySelector(`button[type="submit"], input[type="submit"]`),
		feedback: form.QuerySelector("." + FeedbackClass),
		errs:     model.FieldErrors{},
	}
	for _, field := range model.ContactFields {
		in := form.ElementByName(c.Fields[field])
		if in == nil {
			return nil
		}
		f.inputs[field] = in
	}
	form.On("submit", f.handleSubmit)
	return f
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Errors returns the failures from the last validation pass.
func (f *Form) Errors() model.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(model.FieldErrors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Status is the text last shown in the feedback area.
func (f *Form) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Sending is the simulated send in flight, or the last one.  Nil before
// the first valid submit.
func (f *Form) Sending() *task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sending
}

// Clearing is the pending status clear, or nil.
func (f *Form) Clearing() *task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearing
}

// Fill sets the inputs from sub.  Call it with the document lock held.
func (f *Form) Fill(sub model.ContactSubmission) {
	for _, field := range model.ContactFields {
		f.inputs[field].SetValue(sub.Value(field))
	}
}

func (f *Form) read() model.ContactSubmission {
	return model.ContactSubmission{
		Name:    f.inputs[model.FieldName].Value(),
		Email:   f.inputs[model.FieldEmail].Value(),
		Message: f.inputs[model.FieldMessage].Value(),
	}
}

func (f *Form) handleSubmit(ev *dom.Event) {
	ev.PreventDefault()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Submitting {
		return
	}
	f.gen++
	f.clearing.Cancel()
	f.clearing = nil

	f.state = Validating
	f.clearFieldErrors()

	sub := f.read()
	f.errs = Validate(sub, f.conf.Messages)
	if f.errs.HasErrors() {
		for _, field := range model.ContactFields {
			if msg, ok := f.errs[field]; ok {
				f.markInvalid(field, msg)
			}
		}
		f.setStatus(f.conf.Messages.FixErrors)
		f.state = Invalid
		return
	}

	f.setStatus(f.conf.Messages.Sending)
	if f.submit != nil {
		f.submit.SetDisabled(true)
	}
	f.state = Submitting
	gen := f.gen
	sub = sub.Trimmed()
	f.sending = task.After(f.ctx, f.conf.Clock, f.conf.SendDelay, func(ctx context.Context) error {
		f.doc.Update(func() { f.finishSend(ctx, gen, sub) })
		return nil
	})
}

func (f *Form) finishSend(ctx context.Context, gen int, sub model.ContactSubmission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || ctx.Err() != nil {
		return
	}

	f.form.Reset()
	if f.submit != nil {
		f.submit.SetDisabled(false)
	}
	f.setStatus(f.conf.Messages.Sent)
	f.state = Success
	if f.conf.OnSent != nil {
		f.conf.OnSent(sub)
	}

	f.clearing = task.After(f.ctx, f.conf.Clock, f.conf.StatusDuration, func(ctx context.Context) error {
		f.doc.Update(func() { f.clearStatus(ctx, gen) })
		return nil
	})
}

func (f *Form) clearStatus(ctx context.Context, gen int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// A newer submit owns the status now.
	if gen != f.gen || ctx.Err() != nil {
		return
	}
	f.setStatus("")
	f.state = Idle
	f.clearing = nil
}

func (f *Form) setStatus(s string) {
	f.status = s
	if f.feedback != nil {
		f.feedback.SetText(s)
	}
}

func (f *Form) errorID(field string) string {
	return f.conf.FormID + "-" + field + "-error"
}

// errorElement finds the message element that follows field's input,
// creating it if create is set.
func (f *Form) errorElement(field string, create bool) *dom.Element {
	in := f.inputs[field]
	if next := in.NextElementSibling(); next != nil && next.HasClass(FieldErrorClass) {
		return next
	}
	if !create {
		return nil
	}
	el := f.doc.CreateElement("span")
	el.SetAttr("class", FieldErrorClass)
	el.SetAttr("id", f.errorID(field))
	el.SetAttr("role", "alert")
	in.After(el)
	return el
}

func (f *Form) markInvalid(field, msg string) {
	in := f.inputs[field]
	in.SetClass(InvalidClass, true)
	in.SetAttr("aria-invalid", "true")
	el := f.errorElement(field, true)
	if el.ID() == "" {
		el.SetAttr("id", f.errorID(field))
	}
	el.SetText(msg)
	in.SetAttr("aria-describedby", el.ID())
}

func (f *Form) clearFieldErrors() {
	for _, field := range model.ContactFields {
		in := f.inputs[field]
		in.SetClass(InvalidClass, false)
		in.RemoveAttr("aria-invalid")
		el := f.errorElement(field, false)
		if el == nil {
			continue
		}
		if v, _ := in.Attr("aria-describedby"); v == el.ID() {
			in.RemoveAttr("aria-describedby")
		}
		el.SetText("")
	}
}
