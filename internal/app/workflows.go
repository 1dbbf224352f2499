package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/debounce"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/progress"
	"github.com/mmcdole/watchlog/internal/workflow"
)

func openWorkflow(s State, in Intent, deps Deps) (State, tea.Cmd) {
	var next workflow.Workflow
	switch in := in.(type) {
	case OpenSearch:
		next = workflow.Search{}
	case OpenQuickAdd:
		next = workflow.QuickAdd{Item: in.Item}
	case OpenFriendForm:
		form := workflow.FriendForm{}
		if in.Editing != nil {
			id := in.Editing.ID
			form.Editing = &id
			form.Name = in.Editing.Name
		}
		next = form
	case OpenTagForm:
		form := workflow.TagForm{}
		if in.Editing != nil {
			id := in.Editing.ID
			form.Editing = &id
			form.Name = in.Editing.Name
			form.Color = in.Editing.Color
		}
		next = form
	case OpenAbandon:
		entry, ok := s.Entry(in.ID)
		if !ok {
			return s, nil
		}
		next = workflow.Abandon{Target: entry.ID, Title: entry.Title()}
	case OpenConfirmDelete:
		if in.Target.Kind == workflow.TargetEntry && s.IsPending(domain.EntryID(in.Target.ID)) {
			return notify(s, NotifyInfo, fmt.Sprintf("%s is still saving", in.Target.Label), "", deps)
		}
		next = workflow.ConfirmDelete{Target: in.Target}
	default:
		return s, nil
	}

	prev := s.Workflow
	w, ok := workflow.Open(prev, next)
	if !ok {
		deps.Options.Logger.Debug("ignored open while submitting", "open", next.Kind())
		return s, nil
	}
	s.Workflow = w
	s.workflowGen++

	if _, wasSearch := prev.(workflow.Search); wasSearch {
		s.searchTimer = s.searchTimer.Cancel()
	}
	if _, isSearch := next.(workflow.Search); isSearch {
		s.Search = s.Search.Reset()
	}
	return s, nil
}

func closeWorkflow(s State, deps Deps) (State, tea.Cmd) {
	prev := s.Workflow
	w, ok := workflow.Close(prev)
	if !ok {
		deps.Options.Logger.Debug("ignored close while submitting", "workflow", prev.Kind())
		return s, nil
	}
	s.Workflow = w
	if _, wasSearch := prev.(workflow.Search); wasSearch {
		s.searchTimer = s.searchTimer.Cancel()
	}
	return s, nil
}

func editField(s State, in EditField, deps Deps) (State, tea.Cmd) {
	if s.Workflow == nil || workflow.IsSubmitting(s.Workflow) {
		return s, nil
	}
	s.Workflow = workflow.SetField(s.Workflow, in.Field, in.Value)

	if _, ok := s.Workflow.(workflow.Search); !ok || in.Field != workflow.FieldQuery {
		return s, nil
	}

	// Empty query clears results without a request
	if strings.TrimSpace(in.Value) == "" {
		s.searchTimer = s.searchTimer.Cancel()
		s.Search = s.Search.Reset()
		return s, nil
	}

	var cmd tea.Cmd
	s.searchTimer, cmd = s.searchTimer.Trigger(in.Value)
	return s, mapCmd(cmd, toSearchQuiet)
}

func toSearchQuiet(msg tea.Msg) tea.Msg {
	if elapsed, ok := msg.(debounce.Elapsed[string]); ok {
		return SearchQuiet{Elapsed: elapsed}
	}
	return msg
}

func submitWorkflow(s State, deps Deps) (State, tea.Cmd) {
	w, err := workflow.BeginSubmit(s.Workflow)
	if err != nil {
		if errors.Is(err, workflow.ErrSubmitting) || errors.Is(err, workflow.ErrNotSubmittable) {
			return s, nil
		}
		// Validation failed; the error is on the workflow and nothing is sent
		s.Workflow = w
		return s, nil
	}

	timeout := deps.Options.RequestTimeout
	gen := s.workflowGen

	switch w := w.(type) {
	case workflow.QuickAdd:
		s.Workflow = w
		return s, addEntryCmd(deps.Services.Library, timeout, gen, w.NewEntry())

	case workflow.FriendForm:
		s.Workflow = w
		return s, saveFriendCmd(deps.Services.Friends, timeout, gen, w.Editing, w.FriendInput())

	case workflow.TagForm:
		s.Workflow = w
		return s, saveTagCmd(deps.Services.Tags, timeout, gen, w.Editing, w.TagInput())

	case workflow.Abandon:
		entry, ok := s.Entry(w.Target)
		if !ok {
			s.Workflow = workflow.Fail(w, domain.ErrorInfoFrom(domain.ErrEntryNotFound))
			return s, nil
		}
		season, episode, _ := w.Position()
		status, err := progress.Abandon(entry, strings.TrimSpace(w.Reason), season, episode)
		if err != nil {
			s.Workflow = workflow.Fail(w, rejectedInfo(err))
			return s, nil
		}
		s.Workflow = w
		return s, abandonCmd(deps.Services.Library, timeout, gen, entry.ID, status)

	case workflow.ConfirmDelete:
		s.Workflow = w
		if w.Target.Kind == workflow.TargetEntry {
			s = s.withPending(domain.EntryID(w.Target.ID), true)
		}
		return s, deleteCmd(deps.Services, timeout, gen, w.Target)

	default:
		return s, nil
	}
}

// rejectedInfo reports a refused transition as a local validation failure
func rejectedInfo(err error) domain.ErrorInfo {
	return domain.ErrorInfo{Kind: domain.ValidationErrorKind, Message: err.Error()}
}

// owns reports whether a completion belongs to the workflow still waiting on it
func (s State) owns(gen uint64) bool {
	return gen == s.workflowGen && workflow.IsSubmitting(s.Workflow)
}

// finish closes the owning workflow on success, or records the error on it.
// Failures for a workflow that is no longer current become a notification.
func finish(s State, gen uint64, err error, what string, deps Deps) (State, tea.Cmd) {
	if err != nil {
		deps.Options.Logger.Error("workflow submit failed", "action", what, "error", err)
		if s.owns(gen) {
			s.Workflow = workflow.Fail(s.Workflow, domain.ErrorInfoFrom(err))
			return s, nil
		}
		return notifyError(s, what, err, deps)
	}
	if s.owns(gen) {
		s.Workflow = nil
	} else {
		deps.Options.Logger.Debug("completion for superseded workflow", "action", what, "gen", gen)
	}
	return s, nil
}

func entryAdded(s State, in EntryAdded, deps Deps) (State, tea.Cmd) {
	s, cmd := finish(s, in.Gen, in.Err, "adding entry", deps)
	if in.Err != nil {
		return s, cmd
	}
	s.Library = s.Library.Patch(func(entries []domain.LibraryEntry) []domain.LibraryEntry {
		return upsertEntry(entries, in.Entry)
	})
	return notify(s, NotifySuccess, fmt.Sprintf("Added %s", in.Entry.Title()), "", deps)
}

func entryAbandoned(s State, in EntryAbandoned, deps Deps) (State, tea.Cmd) {
	s, cmd := finish(s, in.Gen, in.Err, "abandoning", deps)
	if in.Err != nil {
		return s, cmd
	}
	s.Library = s.Library.Patch(func(entries []domain.LibraryEntry) []domain.LibraryEntry {
		return replaceEntry(entries, in.Entry)
	})
	return notify(s, NotifySuccess, fmt.Sprintf("Abandoned %s", in.Entry.Title()), "", deps)
}

func friendSaved(s State, in FriendSaved, deps Deps) (State, tea.Cmd) {
	s, cmd := finish(s, in.Gen, in.Err, "saving friend", deps)
	if in.Err != nil {
		return s, cmd
	}
	s.Friends = s.Friends.Patch(func(friends []domain.Friend) []domain.Friend {
		out := slices.Clone(friends)
		if i := slices.IndexFunc(out, func(f domain.Friend) bool { return f.ID == in.Friend.ID }); i >= 0 {
			out[i] = in.Friend
			return out
		}
		return append(out, in.Friend)
	})
	verb := "Updated"
	if in.Created {
		verb = "Added"
	}
	return notify(s, NotifySuccess, fmt.Sprintf("%s friend %s", verb, in.Friend.Name), "", deps)
}

func tagSaved(s State, in TagSaved, deps Deps) (State, tea.Cmd) {
	s, cmd := finish(s, in.Gen, in.Err, "saving tag", deps)
	if in.Err != nil {
		return s, cmd
	}
	s.Tags = s.Tags.Patch(func(tags []domain.Tag) []domain.Tag {
		out := slices.Clone(tags)
		if i := slices.IndexFunc(out, func(t domain.Tag) bool { return t.ID == in.Tag.ID }); i >= 0 {
			out[i] = in.Tag
			return out
		}
		return append(out, in.Tag)
	})
	verb := "Updated"
	if in.Created {
		verb = "Added"
	}
	return notify(s, NotifySuccess, fmt.Sprintf("%s tag %s", verb, in.Tag.Name), "", deps)
}

func deleted(s State, in Deleted, deps Deps) (State, tea.Cmd) {
	if in.Target.Kind == workflow.TargetEntry {
		s = s.withPending(domain.EntryID(in.Target.ID), false)
	}
	s, cmd := finish(s, in.Gen, in.Err, "deleting "+in.Target.Label, deps)
	if in.Err != nil {
		return s, cmd
	}

	switch in.Target.Kind {
	case workflow.TargetEntry:
		id := domain.EntryID(in.Target.ID)
		s.Library = s.Library.Patch(func(entries []domain.LibraryEntry) []domain.LibraryEntry {
			return slices.DeleteFunc(slices.Clone(entries), func(e domain.LibraryEntry) bool { return e.ID == id })
		})
		s = s.withoutEntry(id)
		if p, ok := s.Page.(EntryPage); ok && p.ID == id {
			s.Page = LibraryPage{}
		}

	case workflow.TargetFriend:
		id := domain.FriendID(in.Target.ID)
		s.Friends = s.Friends.Patch(func(friends []domain.Friend) []domain.Friend {
			return slices.DeleteFunc(slices.Clone(friends), func(f domain.Friend) bool { return f.ID == id })
		})
		s.Library = s.Library.Patch(func(entries []domain.LibraryEntry) []domain.LibraryEntry {
			out := slices.Clone(entries)
			for i := range out {
				if out[i].HasFriend(id) {
					out[i].Friends = slices.DeleteFunc(slices.Clone(out[i].Friends), func(f domain.FriendID) bool { return f == id })
				}
			}
			return out
		})

	case workflow.TargetTag:
		id := domain.TagID(in.Target.ID)
		s.Tags = s.Tags.Patch(func(tags []domain.Tag) []domain.Tag {
			return slices.DeleteFunc(slices.Clone(tags), func(t domain.Tag) bool { return t.ID == id })
		})
		s.Library = s.Library.Patch(func(entries []domain.LibraryEntry) []domain.LibraryEntry {
			out := slices.Clone(entries)
			for i := range out {
				if out[i].HasTag(id) {
					out[i].Tags = slices.DeleteFunc(slices.Clone(out[i].Tags), func(t domain.TagID) bool { return t == id })
				}
			}
			return out
		})
		if s.Filters.HasTag(id) {
			s.Filters = s.Filters.ToggleTag(id)
		}
	}

	return notify(s, NotifySuccess, fmt.Sprintf("Deleted %s", in.Target.Label), "", deps)
}

// upsertEntry replaces the entry with the same id, or appends it
func upsertEntry(entries []domain.LibraryEntry, entry domain.LibraryEntry) []domain.LibraryEntry {
	out := slices.Clone(entries)
	if i := slices.IndexFunc(out, func(e domain.LibraryEntry) bool { return e.ID == entry.ID }); i >= 0 {
		out[i] = entry
		return out
	}
	return append(out, entry)
}

// replaceEntry swaps in the server's copy of an entry that is still in the
// library. Entries that were removed meanwhile stay removed.
func replaceEntry(entries []domain.LibraryEntry, entry domain.LibraryEntry) []domain.LibraryEntry {
	i := slices.IndexFunc(entries, func(e domain.LibraryEntry) bool { return e.ID == entry.ID })
	if i < 0 {
		return entries
	}
	out := slices.Clone(entries)
	out[i] = entry
	return out
}
