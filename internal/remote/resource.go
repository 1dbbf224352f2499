// Package remote wraps server-backed values in a four-state resource.
//
// Every fetch is tagged with a sequence number issued by the resource slot.
// Completions carrying an older sequence than the latest issued one are
// discarded, so a slow response can never overwrite a newer one.
package remote

import "github.com/mmcdole/watchlog/internal/domain"

// Status is the lifecycle state of a Resource
type Status int

const (
	NotRequested Status = iota
	Loading
	Success
	Failure
)

// String returns a human-readable representation of the status
func (s Status) String() string {
	switch s {
	case NotRequested:
		return "Not Requested"
	case Loading:
		return "Loading"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// Seq is a per-slot request token
type Seq uint64

// Resource holds the latest known state of one server-backed value.
// The zero value is NotRequested. Resources are values: every transition
// returns a new Resource and leaves the receiver untouched.
type Resource[T any] struct {
	status Status
	value  T
	err    domain.ErrorInfo
	seq    Seq
}

// Status returns the current lifecycle state
func (r Resource[T]) Status() Status { return r.status }

// Seq returns the latest sequence number issued for this slot
func (r Resource[T]) Seq() Seq { return r.seq }

// IsLoading reports whether a request is in flight
func (r Resource[T]) IsLoading() bool { return r.status == Loading }

// Request enters Loading and issues a new sequence number. When the resource
// is already Loading it is returned unchanged with ok=false, and the caller
// must not schedule another fetch.
func (r Resource[T]) Request() (Resource[T], Seq, bool) {
	if r.status == Loading {
		return r, r.seq, false
	}
	next := r.Reload()
	return next, next.seq, true
}

// Reload enters Loading with a new sequence number even when a request is
// already in flight, superseding it. Use it when the request parameters
// changed. Any previous value or error is dropped.
func (r Resource[T]) Reload() Resource[T] {
	var zero T
	return Resource[T]{status: Loading, value: zero, seq: r.seq + 1}
}

// Reset returns to NotRequested, keeping the sequence counter so that
// responses to requests issued before the reset stay stale.
func (r Resource[T]) Reset() Resource[T] {
	return Resource[T]{seq: r.seq}
}

// IsCurrent reports whether a completion tagged with seq would be applied
func (r Resource[T]) IsCurrent(seq Seq) bool {
	return r.status == Loading && seq == r.seq
}

// ResolveSuccess stores value if seq belongs to the in-flight request.
// Stale completions leave the resource unchanged and report applied=false.
func (r Resource[T]) ResolveSuccess(seq Seq, value T) (Resource[T], bool) {
	if !r.IsCurrent(seq) {
		return r, false
	}
	return Resource[T]{status: Success, value: value, seq: r.seq}, true
}

// ResolveFailure stores info if seq belongs to the in-flight request.
// Stale completions leave the resource unchanged and report applied=false.
func (r Resource[T]) ResolveFailure(seq Seq, info domain.ErrorInfo) (Resource[T], bool) {
	if !r.IsCurrent(seq) {
		return r, false
	}
	return Resource[T]{status: Failure, err: info, seq: r.seq}, true
}

// Resolve dispatches to ResolveSuccess or ResolveFailure depending on err
func (r Resource[T]) Resolve(seq Seq, value T, err error) (Resource[T], bool) {
	if err != nil {
		return r.ResolveFailure(seq, domain.ErrorInfoFrom(err))
	}
	return r.ResolveSuccess(seq, value)
}

// Value returns the loaded value; ok is false unless the status is Success
func (r Resource[T]) Value() (T, bool) {
	if r.status != Success {
		var zero T
		return zero, false
	}
	return r.value, true
}

// GetOrDefault returns the loaded value or fallback
func (r Resource[T]) GetOrDefault(fallback T) T {
	if v, ok := r.Value(); ok {
		return v
	}
	return fallback
}

// Err returns the failure info; ok is false unless the status is Failure
func (r Resource[T]) Err() (domain.ErrorInfo, bool) {
	if r.status != Failure {
		return domain.ErrorInfo{}, false
	}
	return r.err, true
}

// Patch rewrites a loaded value in place, keeping status and sequence.
// It is a no-op unless the status is Success.
func (r Resource[T]) Patch(f func(T) T) Resource[T] {
	if r.status != Success {
		return r
	}
	r.value = f(r.value)
	return r
}

// Map projects a resource onto another value type, preserving state and sequence
func Map[T, U any](r Resource[T], f func(T) U) Resource[U] {
	out := Resource[U]{status: r.status, err: r.err, seq: r.seq}
	if r.status == Success {
		out.value = f(r.value)
	}
	return out
}

// Succeeded builds a Success resource; intended for tests and seeding
func Succeeded[T any](value T) Resource[T] {
	return Resource[T]{status: Success, value: value}
}
