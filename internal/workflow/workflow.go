// Package workflow holds the single active multi-step interaction.
//
// At most one Workflow is active at a time; a nil Workflow means none is
// open. Opening another workflow replaces the current one and drops its
// input. While a submission is in flight the workflow can be neither closed
// nor replaced.
package workflow

import (
	"errors"
	"slices"

	"github.com/mmcdole/watchlog/internal/domain"
)

var (
	// ErrSubmitting indicates the workflow is waiting on the backend
	ErrSubmitting = errors.New("workflow is submitting")

	// ErrNotSubmittable indicates the workflow has nothing to submit
	ErrNotSubmittable = errors.New("workflow cannot be submitted")
)

// Kind identifies a workflow variant
type Kind int

const (
	KindSearch Kind = iota
	KindQuickAdd
	KindFriendForm
	KindTagForm
	KindAbandon
	KindConfirmDelete
)

// String returns the dialog title for the kind
func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "Search"
	case KindQuickAdd:
		return "Add to Library"
	case KindFriendForm:
		return "Friend"
	case KindTagForm:
		return "Tag"
	case KindAbandon:
		return "Abandon"
	case KindConfirmDelete:
		return "Confirm Delete"
	default:
		return "Unknown"
	}
}

// Submission is the request lifecycle shared by every submittable workflow
type Submission struct {
	Submitting bool
	Err        *domain.ErrorInfo
}

// Workflow is one of Search, QuickAdd, FriendForm, TagForm, Abandon or
// ConfirmDelete. Values are immutable; every operation returns a copy.
type Workflow interface {
	Kind() Kind
	State() Submission
	withState(Submission) Workflow
	validate() error
}

// Search is the title search dialog. Results live in the app's search
// resource; picking one opens QuickAdd.
type Search struct {
	Query string
}

// QuickAdd adds a search result to the library
type QuickAdd struct {
	Item    domain.SearchResult
	Note    string
	Tags    []domain.TagID
	Friends []domain.FriendID
	Submission
}

// FriendForm creates a friend, or renames one when Editing is set
type FriendForm struct {
	Editing *domain.FriendID
	Name    string
	Submission
}

// TagForm creates a tag, or edits one when Editing is set
type TagForm struct {
	Editing *domain.TagID
	Name    string
	Color   string
	Submission
}

// Abandon collects an optional reason and stop position. StopSeason and
// StopEpisode hold the raw text typed by the user.
type Abandon struct {
	Target      domain.EntryID
	Title       string
	Reason      string
	StopSeason  string
	StopEpisode string
	Submission
}

// TargetKind is the type of record a ConfirmDelete removes
type TargetKind int

const (
	TargetEntry TargetKind = iota
	TargetFriend
	TargetTag
)

// DeleteTarget names the record awaiting delete confirmation
type DeleteTarget struct {
	Kind  TargetKind
	ID    int64
	Label string
}

// ConfirmDelete asks before deleting an entry, friend or tag
type ConfirmDelete struct {
	Target DeleteTarget
	Submission
}

func (Search) Kind() Kind        { return KindSearch }
func (QuickAdd) Kind() Kind      { return KindQuickAdd }
func (FriendForm) Kind() Kind    { return KindFriendForm }
func (TagForm) Kind() Kind       { return KindTagForm }
func (Abandon) Kind() Kind       { return KindAbandon }
func (ConfirmDelete) Kind() Kind { return KindConfirmDelete }

func (Search) State() Submission          { return Submission{} }
func (w QuickAdd) State() Submission      { return w.Submission }
func (w FriendForm) State() Submission    { return w.Submission }
func (w TagForm) State() Submission       { return w.Submission }
func (w Abandon) State() Submission       { return w.Submission }
func (w ConfirmDelete) State() Submission { return w.Submission }

func (w Search) withState(Submission) Workflow          { return w }
func (w QuickAdd) withState(s Submission) Workflow      { w.Submission = s; return w }
func (w FriendForm) withState(s Submission) Workflow    { w.Submission = s; return w }
func (w TagForm) withState(s Submission) Workflow       { w.Submission = s; return w }
func (w Abandon) withState(s Submission) Workflow       { w.Submission = s; return w }
func (w ConfirmDelete) withState(s Submission) Workflow { w.Submission = s; return w }

// IsSubmitting reports whether w is waiting on the backend. nil is never submitting.
func IsSubmitting(w Workflow) bool {
	return w != nil && w.State().Submitting
}

// Open replaces current with next. It returns current and false while
// current is submitting.
func Open(current, next Workflow) (Workflow, bool) {
	if IsSubmitting(current) {
		return current, false
	}
	return next, true
}

// Close dismisses current. It returns current and false while current is
// submitting.
func Close(current Workflow) (Workflow, bool) {
	if IsSubmitting(current) {
		return current, false
	}
	return nil, true
}

// BeginSubmit validates w and marks it submitting with its error cleared.
// Validation failures are stored on the workflow and returned; nothing
// should be sent to the backend in that case.
func BeginSubmit(w Workflow) (Workflow, error) {
	if w == nil {
		return nil, ErrNotSubmittable
	}
	if w.Kind() == KindSearch {
		return w, ErrNotSubmittable
	}
	if IsSubmitting(w) {
		return w, ErrSubmitting
	}
	if err := w.validate(); err != nil {
		info := domain.ErrorInfoFrom(err)
		return w.withState(Submission{Err: &info}), err
	}
	return w.withState(Submission{Submitting: true}), nil
}

// Fail ends a submission with info. The workflow stays open.
func Fail(w Workflow, info domain.ErrorInfo) Workflow {
	if w == nil {
		return nil
	}
	return w.withState(Submission{Err: &info})
}

// ToggleTag adds or removes a tag from the local selection
func (w QuickAdd) ToggleTag(id domain.TagID) QuickAdd {
	w.Tags = toggle(w.Tags, id)
	return w
}

// ToggleFriend adds or removes a friend from the local selection
func (w QuickAdd) ToggleFriend(id domain.FriendID) QuickAdd {
	w.Friends = toggle(w.Friends, id)
	return w
}

// NewEntry builds the add-entry request
func (w QuickAdd) NewEntry() domain.NewEntry {
	return domain.NewEntry{
		Selection: w.Item,
		Note:      w.Note,
		Tags:      slices.Clone(w.Tags),
		Friends:   slices.Clone(w.Friends),
	}
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}
