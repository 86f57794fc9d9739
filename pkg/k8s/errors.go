package k8s

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilnet "k8s.io/apimachinery/pkg/util/net"
)

// ErrorKind classifies a data access failure.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not found"
	KindPermissionDenied ErrorKind = "permission denied"
	KindTimeout          ErrorKind = "timed out"
	KindConnection       ErrorKind = "connection error"
	KindUnknown          ErrorKind = "error"
)

// AccessError is a classified failure of one read call.
type AccessError struct {
	// Op names the read, e.g. "list pods".
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// Classify wraps err into an *AccessError. Already classified errors and
// partial results are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AccessError
	if errors.As(err, &ae) {
		return err
	}
	var pe *PartialError
	if errors.As(err, &pe) {
		return err
	}
	return &AccessError{Op: op, Kind: kindOf(err), Err: err}
}

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return kindOf(err)
}

func kindOf(err error) ErrorKind {
	var netErr net.Error
	switch {
	case apierrors.IsNotFound(err):
		return KindNotFound
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return KindPermissionDenied
	case errors.Is(err, context.DeadlineExceeded), apierrors.IsTimeout(err), apierrors.IsServerTimeout(err):
		return KindTimeout
	case utilnet.IsConnectionRefused(err), utilnet.IsConnectionReset(err), utilnet.IsProbableEOF(err),
		apierrors.IsServiceUnavailable(err):
		return KindConnection
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}
	return KindUnknown
}

// PartialError accompanies records when only part of the requested data was
// retrievable. Failures maps the missing scope (a namespace or a resource
// kind) to its error.
type PartialError struct {
	Op       string
	Failures map[string]error
}

func (e *PartialError) Error() string {
	scopes := e.Scopes()
	reasons := make(map[ErrorKind]bool)
	for _, err := range e.Failures {
		reasons[KindOf(err)] = true
	}
	kinds := make([]string, 0, len(reasons))
	for k := range reasons {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return fmt.Sprintf("%s unavailable (%s)", strings.Join(scopes, ", "), strings.Join(kinds, ", "))
}

// Scopes returns the failed scopes in sorted order.
func (e *PartialError) Scopes() []string {
	scopes := make([]string, 0, len(e.Failures))
	for s := range e.Failures {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)
	return scopes
}

// IsPartial reports whether err describes a partial result.
func IsPartial(err error) bool {
	var pe *PartialError
	return errors.As(err, &pe)
}
