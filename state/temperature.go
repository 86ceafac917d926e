package state

// Temperature is a single heater's reading, used for both the bed and
// each tool.
type Temperature struct {
	Tracker
	Actual float64
	Target *float64
}

// SetActual records a newly measured temperature.
func (t *Temperature) SetActual(ctx Ctx, v float64) {
	t.Tracker.Bind(ctx)
	SetField(&t.Tracker, "actual", &t.Actual, v)
}

// SetTarget records a newly commanded setpoint. nil means "off".
func (t *Temperature) SetTarget(ctx Ctx, v *float64) {
	t.Tracker.Bind(ctx)
	if ptrFloatEqual(t.Target, v) {
		return
	}
	t.Target = v
	t.MarkChanged("target")
}

func ptrFloatEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ToList renders [actual, target] the way TemperatureMsg.build expects,
// with an absent target serialized as nil.
func (t *Temperature) ToList() []any {
	var target any
	if t.Target != nil {
		target = *t.Target
	}
	return []any{t.Actual, target}
}
