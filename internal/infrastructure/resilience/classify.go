package resilience

import (
	"context"
	"errors"

	"github.com/vasii/catalog/internal/core/domain"
)

// classifyCommon handles outcomes every adapter treats alike. Cancellation
// is neither retried nor counted against the breaker; an open breaker is
// retried after backoff.
func classifyCommon(err error) (ErrorClassification, bool) {
	switch {
	case err == nil:
		return ErrorClassification{}, true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassification{Retryable: false, RecordFailure: false}, true
	case IsCircuitOpen(err):
		return ErrorClassification{Retryable: true, RecordFailure: true}, true
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrUploadNotFound),
		domain.IsKind(err, domain.ErrProductNotFound),
		domain.IsKind(err, domain.ErrConflict):
		return ErrorClassification{Retryable: false, RecordFailure: false}, true
	case domain.IsKind(err, domain.ErrTemporary):
		return ErrorClassification{Retryable: true, RecordFailure: true}, true
	}
	return ErrorClassification{}, false
}

// Classifier builds an ErrorClassifier from a backend-specific transient
// error test. Errors it does not recognise are recorded but not retried.
func Classifier(transient func(error) bool) ErrorClassifier {
	return func(err error) ErrorClassification {
		if class, ok := classifyCommon(err); ok {
			return class
		}
		if transient != nil && transient(err) {
			return ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
}

// WrapTemporary tags err as domain.ErrTemporary when classifier deems it
// retryable, so callers can map it to 503.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = defaultClassifier
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
