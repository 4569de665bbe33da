// Package apierrors defines the error taxonomy shared by the model,
// codec and client layers. Callers are expected to branch on the error
// kind via the Is* predicates rather than on message text.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// SchemaError reports a malformed or incomplete schema document. It is
// fatal at load time; no catalog is constructed from a document that
// produced one.
type SchemaError struct {
	Message string
}

// NewSchemaError creates a SchemaError with a formatted message.
func NewSchemaError(format string, args ...interface{}) *SchemaError {
	return &SchemaError{Message: fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	return "invalid schema: " + e.Message
}

// UnknownKindError reports a reference to a (apiVersion, kind) pair
// that is not registered in the catalog.
type UnknownKindError struct {
	APIVersion string
	Kind       string
}

// NewUnknownKind creates an UnknownKindError for the given pair.
func NewUnknownKind(apiVersion, kind string) *UnknownKindError {
	return &UnknownKindError{APIVersion: apiVersion, Kind: kind}
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("no kind %q is registered for apiVersion %q", e.Kind, e.APIVersion)
}

// NotFoundError reports a lookup of a collection member that does not
// exist.
type NotFoundError struct {
	Kind      string
	Namespace string
	Name      string
}

// NewNotFound creates a NotFoundError for the given member.
func NewNotFound(kind, namespace, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Namespace: namespace, Name: name}
}

func (e *NotFoundError) Error() string {
	resource := strings.ToLower(e.Kind) + "s"
	if e.Namespace != "" {
		return fmt.Sprintf("%s %q not found in namespace %q", resource, e.Name, e.Namespace)
	}
	return fmt.Sprintf("%s %q not found", resource, e.Name)
}

// RemoteError carries a non-success response from the API server. When
// the server returned a Status document, it is preserved in Status so
// callers can inspect the machine-readable reason.
type RemoteError struct {
	Code    int
	Status  *metav1.Status
	Message string
}

// NewRemoteError creates a RemoteError for the given response.
func NewRemoteError(code int, status *metav1.Status, message string) *RemoteError {
	return &RemoteError{Code: code, Status: status, Message: message}
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error: %s (HTTP %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("remote error: HTTP %d", e.Code)
}

// Reason returns the machine-readable status reason, if any.
func (e *RemoteError) Reason() metav1.StatusReason {
	if e.Status == nil {
		return metav1.StatusReasonUnknown
	}
	return e.Status.Reason
}

// IsSchemaError reports whether err is a SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// IsUnknownKind reports whether err is an UnknownKindError.
func IsUnknownKind(err error) bool {
	var e *UnknownKindError
	return errors.As(err, &e)
}

// IsNotFound reports whether err indicates a missing object, either as
// a collection-level NotFoundError or as a NotFound response from the
// server. Both backends of the client contract are covered.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code == http.StatusNotFound || re.Reason() == metav1.StatusReasonNotFound
	}
	return false
}

// IsAlreadyExists reports whether err indicates that an object with the
// same name already exists.
func IsAlreadyExists(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code == http.StatusConflict || re.Reason() == metav1.StatusReasonAlreadyExists
	}
	return false
}

// IsRemote reports whether err originated as a non-success response.
func IsRemote(err error) bool {
	var e *RemoteError
	return errors.As(err, &e)
}
