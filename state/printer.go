package state

import "fmt"

// Settings holds server-controlled printer preferences (display
// brightness, filament-sensor toggle, etc.) pushed via PrinterSettingsMsg.
type Settings struct {
	Tracker
	HasFilamentSensor bool
}

func (s *Settings) SetHasFilamentSensor(ctx Ctx, v bool) {
	s.Tracker.Bind(ctx)
	SetField(&s.Tracker, "has_filament_sensor", &s.HasFilamentSensor, v)
}

// WebcamSettings holds the client-reported webcam configuration.
type WebcamSettings struct {
	Tracker
	FlipH bool
	FlipV bool
}

func (w *WebcamSettings) SetFlipH(ctx Ctx, v bool) {
	w.Tracker.Bind(ctx)
	SetField(&w.Tracker, "flipH", &w.FlipH, v)
}

func (w *WebcamSettings) SetFlipV(ctx Ctx, v bool) {
	w.Tracker.Bind(ctx)
	SetField(&w.Tracker, "flipV", &w.FlipV, v)
}

// PrinterState is the reactive tree. It
// holds its own scalar fields plus every named sub-record.
type PrinterState struct {
	Tracker
	ctx Ctx

	Status     *PrinterStatus
	ActiveTool int

	NozzleCount   int
	MaterialCount int

	Info               *Info
	CpuInfo            *CpuInfo
	JobInfo            *JobInfo
	PsuInfo            *PsuInfo
	WebcamInfo         *WebcamInfo
	FileProgress       *FileProgress
	Latency            *Latency
	Firmware           *Firmware
	FirmwareWarning    *FirmwareWarning
	BedTemperature     *Temperature
	ToolTemperatures   []*Temperature
	AmbientTemperature *AmbientTemperature
	FilamentSensor     *FilamentSensor
	Nozzles            []*Nozzle
	Materials          []*Material
	MmsLayout          []*MmsSlot
	Bed                *Bed
	Settings           *Settings
	WebcamSettings     *WebcamSettings
	Intervals          *Intervals

	forceMaterialRefresh bool
}

// New builds a PrinterState with one tool/nozzle/material slot, bound
// to ctx. Pass state.Noop before the owning client exists yet.
func New(ctx Ctx) *PrinterState {
	p := &PrinterState{
		ctx:                ctx,
		Info:               &Info{},
		CpuInfo:            &CpuInfo{},
		JobInfo:            &JobInfo{},
		PsuInfo:            &PsuInfo{},
		WebcamInfo:         &WebcamInfo{},
		FileProgress:       &FileProgress{},
		Latency:            &Latency{},
		Firmware:           &Firmware{},
		FirmwareWarning:    &FirmwareWarning{},
		BedTemperature:     &Temperature{},
		AmbientTemperature: &AmbientTemperature{},
		FilamentSensor:     &FilamentSensor{},
		Bed:                &Bed{},
		Settings:           &Settings{},
		WebcamSettings:     &WebcamSettings{},
		Intervals:          NewIntervals(),
		NozzleCount:        1,
		MaterialCount:      1,
	}
	p.Tracker.Bind(ctx)
	p.bindChildren()
	p.SetNozzleCount(ctx, 1)
	p.SetMaterialCount(ctx, 1)
	return p
}

func (p *PrinterState) bindChildren() {
	for _, b := range p.binders() {
		b.Bind(p.ctx)
	}
}

func (p *PrinterState) binders() []*Tracker {
	out := []*Tracker{
		&p.Info.Tracker, &p.CpuInfo.Tracker, &p.JobInfo.Tracker, &p.PsuInfo.Tracker,
		&p.WebcamInfo.Tracker, &p.FileProgress.Tracker, &p.Latency.Tracker,
		&p.Firmware.Tracker, &p.FirmwareWarning.Tracker, &p.BedTemperature.Tracker,
		&p.AmbientTemperature.Tracker, &p.FilamentSensor.Tracker, &p.Bed.Tracker,
		&p.Settings.Tracker, &p.WebcamSettings.Tracker,
	}
	for _, t := range p.ToolTemperatures {
		out = append(out, &t.Tracker)
	}
	for _, n := range p.Nozzles {
		out = append(out, &n.Tracker)
	}
	for _, m := range p.Materials {
		out = append(out, &m.Tracker)
	}
	for _, s := range p.MmsLayout {
		out = append(out, &s.Tracker)
	}
	return out
}

// SetStatus assigns the top-level printer status.
func (p *PrinterState) SetStatus(v PrinterStatus) {
	if p.Status != nil && *p.Status == v {
		return
	}
	p.Status = &v
	p.MarkChanged("status")
}

// SetActiveTool assigns the currently selected extruder/tool index.
func (p *PrinterState) SetActiveTool(v int) {
	SetField(&p.Tracker, "active_tool", &p.ActiveTool, v)
}

// IsHeating reports whether any heater currently has a non-nil target,
// used by TemperatureMsg.dispatch_mode to pick the tighter interval.
func (p *PrinterState) IsHeating() bool {
	if p.BedTemperature.Target != nil {
		return true
	}
	for _, t := range p.ToolTemperatures {
		if t.Target != nil {
			return true
		}
	}
	return false
}

// SetNozzleCount resizes ToolTemperatures and Nozzles to match,
// preserving prefix indices and giving each new slot the correct
// index-self-reference.
func (p *PrinterState) SetNozzleCount(ctx Ctx, n int) {
	if n < 1 {
		n = 1
	}
	if n == p.NozzleCount && len(p.ToolTemperatures) == n && len(p.Nozzles) == n {
		return
	}

	for len(p.ToolTemperatures) < n {
		t := &Temperature{}
		t.Bind(ctx)
		p.ToolTemperatures = append(p.ToolTemperatures, t)
	}
	p.ToolTemperatures = p.ToolTemperatures[:n]

	for len(p.Nozzles) < n {
		idx := len(p.Nozzles)
		nz := &Nozzle{Index: idx}
		nz.Bind(ctx)
		p.Nozzles = append(p.Nozzles, nz)
	}
	p.Nozzles = p.Nozzles[:n]

	SetField(&p.Tracker, "nozzle_count", &p.NozzleCount, n)
}

// SetMaterialCount resizes Materials (and the MMS layout) to match,
// giving each new slot Ext == index.
func (p *PrinterState) SetMaterialCount(ctx Ctx, n int) {
	if n < 1 {
		n = 1
	}
	if n == p.MaterialCount && len(p.Materials) == n {
		return
	}

	for len(p.Materials) < n {
		idx := len(p.Materials)
		m := &Material{Ext: idx}
		m.Bind(ctx)
		p.Materials = append(p.Materials, m)
	}
	p.Materials = p.Materials[:n]

	for len(p.MmsLayout) < n {
		idx := len(p.MmsLayout)
		s := &MmsSlot{Index: idx}
		s.Bind(ctx)
		p.MmsLayout = append(p.MmsLayout, s)
	}
	p.MmsLayout = p.MmsLayout[:n]

	SetField(&p.Tracker, "material_count", &p.MaterialCount, n)
}

// RecursiveChangeset aggregates this node's own stamps with every
// child's, keyed by dotted path ("job_info.started", "nozzles.0.diameter"),
// mirroring StateModel.model_recursive_changeset.
func (p *PrinterState) RecursiveChangeset() map[string]uint64 {
	out := map[string]uint64{}

	merge := func(prefix string, m map[string]uint64) {
		var max uint64
		for k, v := range m {
			out[prefix+"."+k] = v
			if v > max {
				max = v
			}
		}
		if max > 0 {
			if cur, ok := out[prefix]; !ok || max > cur {
				out[prefix] = max
			}
		}
	}

	for k, v := range p.ChangedFields() {
		out[k] = v
	}

	merge("info", p.Info.ChangedFields())
	merge("cpu_info", p.CpuInfo.ChangedFields())
	merge("job_info", p.JobInfo.ChangedFields())
	merge("psu_info", p.PsuInfo.ChangedFields())
	merge("webcam_info", p.WebcamInfo.ChangedFields())
	merge("file_progress", p.FileProgress.ChangedFields())
	merge("latency", p.Latency.ChangedFields())
	merge("firmware", p.Firmware.ChangedFields())
	merge("firmware_warning", p.FirmwareWarning.ChangedFields())
	merge("bed_temperature", p.BedTemperature.ChangedFields())
	merge("ambient_temperature", p.AmbientTemperature.ChangedFields())
	merge("filament_sensor", p.FilamentSensor.ChangedFields())
	merge("bed", p.Bed.ChangedFields())
	merge("settings", p.Settings.ChangedFields())
	merge("webcam_settings", p.WebcamSettings.ChangedFields())

	for i, t := range p.ToolTemperatures {
		merge(fmt.Sprintf("tool_temperatures.%d", i), t.ChangedFields())
	}
	for i, n := range p.Nozzles {
		merge(fmt.Sprintf("nozzles.%d", i), n.ChangedFields())
	}
	for i, m := range p.Materials {
		merge(fmt.Sprintf("materials.%d", i), m.ChangedFields())
	}
	for i, s := range p.MmsLayout {
		merge(fmt.Sprintf("mms_layout.%d", i), s.ChangedFields())
	}

	return out
}

// MaxStamp returns the highest stamp anywhere in the recursive
// changeset — the "v" a scheduler pass should consume up to.
func (p *PrinterState) MaxStamp() uint64 {
	var max uint64
	for _, v := range p.RecursiveChangeset() {
		if v > max {
			max = v
		}
	}
	return max
}

// RequestMaterialRefresh marks every material/bed/nozzle-layout field as
// needing a full resend, honoring the refresh_material_data demand
// (resolved in DESIGN.md as a full, unconditional re-send).
func (p *PrinterState) RequestMaterialRefresh() {
	p.forceMaterialRefresh = true
	p.MarkChanged("mms_layout")
}

// ConsumeMaterialRefresh reports and clears the pending full-refresh
// flag; called once by MaterialDataMsg's producer.
func (p *PrinterState) ConsumeMaterialRefresh() bool {
	v := p.forceMaterialRefresh
	p.forceMaterialRefresh = false
	return v
}

// MarkCommonFieldsChanged re-dirties the fields every reconnect needs
// to re-announce.
func (p *PrinterState) MarkCommonFieldsChanged() {
	if p.Status != nil {
		p.MarkChanged("status")
	}
	p.Info.MarkChanged("api")
	p.Firmware.MarkChanged("name")
}
