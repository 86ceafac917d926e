package state

// JobInfoMutuallyExclusiveFields names the job_info fields that are
// signal-style: setting one true implicitly clears the rest, and a
// repeat "true" assignment must still register as a change.
var JobInfoMutuallyExclusiveFields = map[string]bool{
	"started": true, "finished": true, "cancelled": true, "failed": true,
}

// JobInfo is the per-print job state reported via JobInfoMsg.
type JobInfo struct {
	Tracker

	Started, Finished, Cancelled, Failed bool

	Filename *string
	Progress *float64 // 0..100
}

// SetFilename/SetProgress use ordinary equality semantics.
func (j *JobInfo) SetFilename(ctx Ctx, v string) {
	j.Tracker.Bind(ctx)
	if j.Filename != nil && *j.Filename == v {
		return
	}
	j.Filename = &v
	j.MarkChanged("filename")
}

func (j *JobInfo) SetProgress(ctx Ctx, v float64) {
	j.Tracker.Bind(ctx)
	if j.Progress != nil && *j.Progress == v {
		return
	}
	j.Progress = &v
	j.MarkChanged("progress")
}

func (j *JobInfo) setExclusive(ctx Ctx, field string, target *bool) {
	j.Tracker.Bind(ctx)

	*target = true
	// Unconditional stamp: these are signal fields, two consecutive
	// "true" assignments both register.
	j.MarkChanged(field)

	for name, ptr := range map[string]*bool{
		"started": &j.Started, "finished": &j.Finished,
		"cancelled": &j.Cancelled, "failed": &j.Failed,
	} {
		if ptr == target {
			continue
		}
		if *ptr {
			*ptr = false
			j.MarkChanged(name)
		}
	}
}

func (j *JobInfo) SetStarted(ctx Ctx)   { j.setExclusive(ctx, "started", &j.Started) }
func (j *JobInfo) SetFinished(ctx Ctx)  { j.setExclusive(ctx, "finished", &j.Finished) }
func (j *JobInfo) SetCancelled(ctx Ctx) { j.setExclusive(ctx, "cancelled", &j.Cancelled) }
func (j *JobInfo) SetFailed(ctx Ctx)    { j.setExclusive(ctx, "failed", &j.Failed) }

// Values returns the field values for every field currently dirty on
// this node, mirroring JobInfoMsg.build's "for key in
// model_changed_fields" walk. Exclusive fields currently false are
// dropped even if dirty (messages.py: "not allowed to be sent as
// anything but true").
func (j *JobInfo) Values() map[string]any {
	out := map[string]any{}
	for key := range j.ChangedFields() {
		switch key {
		case "started":
			if j.Started {
				out[key] = true
			}
		case "finished":
			if j.Finished {
				out[key] = true
			}
		case "cancelled":
			if j.Cancelled {
				out[key] = true
			}
		case "failed":
			if j.Failed {
				out[key] = true
			}
		case "filename":
			if j.Filename != nil {
				out[key] = *j.Filename
			}
		case "progress":
			if j.Progress != nil {
				out[key] = *j.Progress
			}
		}
	}
	return out
}
