package models

// SessionPatch is a partial session update. A nil field is omitted and must
// never be written; a non-nil field is written even when it holds a zero value.
type SessionPatch struct {
	Title       *string
	Duration    *int
	Date        *string
	Time        *string
	Status      *SessionStatus
	Notes       *string
	ElapsedTime *int

	// Revision orders timer writes. Zero means an unsequenced user edit.
	Revision uint64
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// StatusPatch sets only the status
func StatusPatch(status SessionStatus) SessionPatch {
	return SessionPatch{Status: &status}
}

// ElapsedPatch sets only the elapsed seconds
func ElapsedPatch(seconds int) SessionPatch {
	return SessionPatch{ElapsedTime: &seconds}
}

// CompletionPatch marks the session completed at the given elapsed seconds
func CompletionPatch(seconds int) SessionPatch {
	status := StatusCompleted
	return SessionPatch{Status: &status, ElapsedTime: &seconds}
}

// IsEmpty reports whether the patch carries no field
func (p SessionPatch) IsEmpty() bool {
	return p.Title == nil && p.Duration == nil && p.Date == nil && p.Time == nil &&
		p.Status == nil && p.Notes == nil && p.ElapsedTime == nil
}

// Columns returns the column values to write. Revision is included only for
// sequenced writes.
func (p SessionPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Duration != nil {
		cols["duration"] = *p.Duration
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Time != nil {
		cols["time"] = *p.Time
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	if p.ElapsedTime != nil {
		cols["elapsed_time"] = *p.ElapsedTime
	}
	if len(cols) > 0 && p.Revision > 0 {
		cols["revision"] = p.Revision
	}
	return cols
}

// Apply merges the patch into s
func (p SessionPatch) Apply(s *Session) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.Time != nil {
		s.Time = *p.Time
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.ElapsedTime != nil {
		elapsed := *p.ElapsedTime
		s.ElapsedTime = &elapsed
	}
	if p.Revision > s.Revision {
		s.Revision = p.Revision
	}
}
