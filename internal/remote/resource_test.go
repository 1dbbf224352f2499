package remote

import (
	"errors"
	"testing"

	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_ZeroValueIsNotRequested(t *testing.T) {
	var r Resource[int]
	assert.Equal(t, NotRequested, r.Status())
	assert.Equal(t, 7, r.GetOrDefault(7))
}

func TestResource_RequestEntersLoading(t *testing.T) {
	var r Resource[string]

	r, seq, ok := r.Request()
	require.True(t, ok)
	assert.Equal(t, Loading, r.Status())
	assert.Equal(t, Seq(1), seq)

	r, applied := r.ResolveSuccess(seq, "done")
	require.True(t, applied)
	v, ok := r.Value()
	require.True(t, ok)
	assert.Equal(t, "done", v)
}

func TestResource_DuplicateRequestWhileLoadingIsNoOp(t *testing.T) {
	var r Resource[int]
	r, first, ok := r.Request()
	require.True(t, ok)

	again, seq, ok := r.Request()
	assert.False(t, ok)
	assert.Equal(t, first, seq)
	assert.Equal(t, r, again)
}

func TestResource_RefetchDiscardsStaleValue(t *testing.T) {
	r := Succeeded([]int{1, 2, 3})

	r, seq, ok := r.Request()
	require.True(t, ok)
	assert.Equal(t, Loading, r.Status())
	_, hasValue := r.Value()
	assert.False(t, hasValue)

	r, _ = r.ResolveFailure(seq, domain.ErrorInfo{Kind: domain.NetworkError, Message: "down"})
	info, ok := r.Err()
	require.True(t, ok)
	assert.Equal(t, "down", info.Message)

	r, _, ok = r.Request()
	assert.True(t, ok, "a failed resource can be requested again")
}

func TestResource_StaleSuccessLeavesResourceUnchanged(t *testing.T) {
	var r Resource[string]
	r, old, _ := r.Request()
	r = r.Reload()
	require.Equal(t, old+1, r.Seq())

	before := r
	after, applied := r.ResolveSuccess(old, "stale")
	assert.False(t, applied)
	assert.Equal(t, before, after)
	assert.Equal(t, Loading, after.Status())

	after, applied = after.ResolveSuccess(r.Seq(), "fresh")
	require.True(t, applied)
	assert.Equal(t, "fresh", after.GetOrDefault(""))
}

func TestResource_ResolveOutsideLoadingIsIgnored(t *testing.T) {
	r := Succeeded(1)
	after, applied := r.ResolveSuccess(r.Seq(), 2)
	assert.False(t, applied)
	assert.Equal(t, 1, after.GetOrDefault(0))
}

func TestResource_ResolveClassifiesErrors(t *testing.T) {
	var r Resource[int]
	r, seq, _ := r.Request()

	r, applied := r.Resolve(seq, 0, &domain.ServerError{Status: 500, Message: "boom"})
	require.True(t, applied)
	info, ok := r.Err()
	require.True(t, ok)
	assert.Equal(t, domain.ServerErrorKind, info.Kind)
	assert.Equal(t, "boom", info.Message)
	assert.NotEmpty(t, info.RetryHint)

	r, seq, _ = r.Request()
	r, _ = r.Resolve(seq, 0, errors.Join(domain.ErrServerOffline))
	info, _ = r.Err()
	assert.Equal(t, domain.NetworkError, info.Kind)
}

func TestResource_PatchOnlyTouchesSuccess(t *testing.T) {
	double := func(v int) int { return v * 2 }

	loaded := Succeeded(4).Patch(double)
	assert.Equal(t, 8, loaded.GetOrDefault(0))

	var r Resource[int]
	r, _, _ = r.Request()
	assert.Equal(t, r, r.Patch(double))
}

func TestMap_PreservesState(t *testing.T) {
	r := Succeeded([]string{"a", "b"})
	n := Map(r, func(v []string) int { return len(v) })
	assert.Equal(t, Success, n.Status())
	assert.Equal(t, 2, n.GetOrDefault(0))

	var loading Resource[[]string]
	loading, _, _ = loading.Request()
	m := Map(loading, func(v []string) int { return len(v) })
	assert.Equal(t, Loading, m.Status())
	assert.Equal(t, loading.Seq(), m.Seq())
}

func TestResource_ResetKeepsOlderResponsesStale(t *testing.T) {
	var r Resource[string]
	r, old, _ := r.Request()

	r = r.Reset()
	assert.Equal(t, NotRequested, r.Status())

	r, seq, ok := r.Request()
	require.True(t, ok)
	assert.NotEqual(t, old, seq)

	r, applied := r.ResolveSuccess(old, "stale")
	assert.False(t, applied)
	assert.True(t, r.IsLoading())
}
