package settings

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

// GeneralTab is the Editor tab name for the non-app settings bucket.
const GeneralTab = "general"

// Editor holds the last-saved snapshot and the in-memory draft of the
// settings bundle. Edits touch only the draft; Adopt replaces both after a
// save or reload.
type Editor struct {
	saved *huntarr.Settings
	draft *huntarr.Settings
}

// NewEditor seeds both snapshot and draft from the given bundle.
func NewEditor(bundle *huntarr.Settings) *Editor {
	return &Editor{
		saved: bundle.Clone(),
		draft: bundle.Clone(),
	}
}

// Draft returns the mutable draft for one app, or nil for an unknown name.
func (e *Editor) Draft(app string) *huntarr.AppSettings {
	return e.draft.App(app)
}

// DraftGeneral returns the mutable general settings draft.
func (e *Editor) DraftGeneral() *huntarr.GeneralSettings {
	return &e.draft.General
}

// Saved returns the last-saved settings for one app.
func (e *Editor) Saved(app string) *huntarr.AppSettings {
	return e.saved.App(app)
}

// Dirty reports whether the draft for one app differs from the saved
// snapshot. Mutating one app's draft never marks another app dirty.
func (e *Editor) Dirty(app string) bool {
	if app == GeneralTab {
		return e.draft.General != e.saved.General
	}
	draft := e.draft.App(app)
	saved := e.saved.App(app)
	if draft == nil || saved == nil {
		return false
	}
	return !reflect.DeepEqual(*draft, *saved)
}

// DirtyAny reports whether any tab has unsaved changes.
func (e *Editor) DirtyAny() bool {
	for _, app := range huntarr.Apps {
		if e.Dirty(app) {
			return true
		}
	}
	return e.Dirty(GeneralTab)
}

// Adopt replaces both snapshot and draft with the server's authoritative
// bundle. Called after every successful save, reset, or reload so the client
// reflects any server-side normalization.
func (e *Editor) Adopt(bundle *huntarr.Settings) {
	e.saved = bundle.Clone()
	e.draft = bundle.Clone()
}

// Revert discards the draft for one app, restoring the saved values.
func (e *Editor) Revert(app string) {
	if app == GeneralTab {
		e.draft.General = e.saved.General
		return
	}
	if saved := e.saved.App(app); saved != nil {
		*e.draft.App(app) = saved.Clone()
	}
}

// ParseCount parses a numeric field typed through the UI. It rejects
// non-numeric and negative input with an explicit error rather than coercing
// to zero; the same policy applies to every numeric field.
func ParseCount(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("value required")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("value must not be negative")
	}
	return n, nil
}
