package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/target/positions-ui/internal/errors"
)

const (
	errMsgFixBelow     = "Please fix the errors below."
	errMsgSubmitFailed = "Unable to submit. Please try again."
)

// FormParser parses form data from an HTTP request and returns the parsed data
// along with any field-level validation errors.
type FormParser[T any] func(r *http.Request) (T, map[string]string)

// FormSubmitter performs the form's action.
type FormSubmitter[T any] func(ctx context.Context, data T) error

// FormRenderer renders the form template with the given data.
type FormRenderer func(w http.ResponseWriter, r *http.Request, data map[string]any)

// ErrorHandler maps a submit error to field errors and a general message.
// Return nil and "" to fall through to the default handling.
type ErrorHandler func(err error) (fieldErrors map[string]string, generalError string)

// FormHandlerOpts contains everything needed to handle one form submission.
type FormHandlerOpts[T any] struct {
	W        http.ResponseWriter
	R        *http.Request
	Parser   FormParser[T]
	Submit   FormSubmitter[T]
	Renderer FormRenderer
	// PageMeta is used when the form is re-rendered with errors.
	PageMeta PageMeta
	// SuccessURL is redirected to after a successful submit unless OnSuccess is set.
	SuccessURL string
	// Optional: replaces the success redirect.
	OnSuccess func(w http.ResponseWriter, r *http.Request)
	// Optional: custom error handler for domain-specific errors.
	HandleError ErrorHandler
	// Optional: status written when the form is re-rendered (defaults to 200 so htmx swaps it).
	ErrorStatus int
}

// HandleForm parses, validates and submits a form. Invalid input and failed
// submits re-render the form with the submitted values; success redirects.
func HandleForm[T any](opts FormHandlerOpts[T]) {
	if opts.Parser == nil || opts.Submit == nil || opts.Renderer == nil {
		http.Error(opts.W, "misconfigured form handler", http.StatusInternalServerError)
		return
	}

	data, fieldErrors := opts.Parser(opts.R)
	if len(fieldErrors) > 0 {
		opts.renderFormError(fieldErrors, "", data)
		return
	}

	if err := opts.Submit(opts.R.Context(), data); err != nil {
		handleFormSubmitError(opts, err, data)
		return
	}

	if opts.OnSuccess != nil {
		opts.OnSuccess(opts.W, opts.R)
		return
	}
	redirect(opts.W, opts.R, opts.SuccessURL)
}

func handleFormSubmitError[T any](opts FormHandlerOpts[T], err error, data T) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		http.Error(opts.W, "request canceled", http.StatusRequestTimeout)
		return
	}

	if apperrors.IsValidation(err) {
		if fields := apperrors.GetFieldErrors(err); len(fields) > 0 {
			opts.renderFormError(fields, "", data)
			return
		}
	}

	if opts.HandleError != nil {
		fieldErrors, generalError := opts.HandleError(err)
		if fieldErrors != nil || generalError != "" {
			opts.renderFormError(fieldErrors, generalError, data)
			return
		}
	}

	opts.renderFormError(nil, errMsgSubmitFailed, data)
}

// renderFormError re-renders the form with errors and the submitted data.
func (fh FormHandlerOpts[T]) renderFormError(fieldErrors map[string]string, generalError string, data T) {
	td := NewTemplateData(fh.R, fh.PageMeta).WithFieldErrors(fieldErrors)
	switch {
	case generalError != "":
		td.WithError(generalError)
	case len(fieldErrors) > 0:
		td.WithError(errMsgFixBelow)
	}
	if fh.ErrorStatus != 0 {
		td.WithStatus(fh.ErrorStatus)
	}
	td.With("FormData", data)
	fh.Renderer(fh.W, fh.R, td.Build())
}
