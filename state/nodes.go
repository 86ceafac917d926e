package state

// Info carries firmware/API/OS metadata, consumed wholesale by
// MachineDataMsg (messages.py: "for key in state.info.model_fields").
type Info struct {
	Tracker
	UniqueID      string
	API           string
	APIVersion    string
	SPVersion     string
	FirmwareName  string
	MachineType   string
	OS            string
	PythonVersion string
}

func (i *Info) SetAPI(ctx Ctx, v string) {
	i.Tracker.Bind(ctx)
	SetField(&i.Tracker, "api", &i.API, v)
}

func (i *Info) SetAPIVersion(ctx Ctx, v string) {
	i.Tracker.Bind(ctx)
	SetField(&i.Tracker, "api_version", &i.APIVersion, v)
}

func (i *Info) SetMachineType(ctx Ctx, v string) {
	i.Tracker.Bind(ctx)
	SetField(&i.Tracker, "machine_type", &i.MachineType, v)
}

func (i *Info) SetOS(ctx Ctx, v string) {
	i.Tracker.Bind(ctx)
	SetField(&i.Tracker, "os", &i.OS, v)
}

// Fields exposes the field names MachineDataMsg.Build iterates over,
// alongside their current values.
func (i *Info) Fields() map[string]any {
	return map[string]any{
		"api":          i.API,
		"api_version":  i.APIVersion,
		"sp_version":   i.SPVersion,
		"machine_type": i.MachineType,
		"os":           i.OS,
		"python_version": i.PythonVersion,
	}
}

// CpuInfo is periodic host-health telemetry.
type CpuInfo struct {
	Tracker
	Usage  float64
	Temp   float64
	Memory float64
	Flags  CpuFlag
}

func (c *CpuInfo) SetUsage(ctx Ctx, v float64) {
	c.Tracker.Bind(ctx)
	SetField(&c.Tracker, "usage", &c.Usage, v)
}

func (c *CpuInfo) SetTemp(ctx Ctx, v float64) {
	c.Tracker.Bind(ctx)
	SetField(&c.Tracker, "temp", &c.Temp, v)
}

func (c *CpuInfo) SetMemory(ctx Ctx, v float64) {
	c.Tracker.Bind(ctx)
	SetField(&c.Tracker, "memory", &c.Memory, v)
}

func (c *CpuInfo) SetFlags(ctx Ctx, v CpuFlag) {
	c.Tracker.Bind(ctx)
	SetField(&c.Tracker, "flags", &c.Flags, v)
}

// PsuInfo tracks whether the PSU relay is on.
type PsuInfo struct {
	Tracker
	On bool
}

func (p *PsuInfo) Set(ctx Ctx, on bool) {
	p.Tracker.Bind(ctx)
	SetField(&p.Tracker, "on", &p.On, on)
}

// WebcamInfo tracks whether a webcam is currently detected.
type WebcamInfo struct {
	Tracker
	Connected bool
}

func (w *WebcamInfo) SetConnected(ctx Ctx, v bool) {
	w.Tracker.Bind(ctx)
	SetField(&w.Tracker, "connected", &w.Connected, v)
}

// FileProgress tracks the state of an in-flight file download/print.
type FileProgress struct {
	Tracker
	State   *FileProgressState
	Percent float64
	Message *string
}

func (f *FileProgress) SetState(ctx Ctx, v FileProgressState) {
	f.Tracker.Bind(ctx)
	if f.State != nil && *f.State == v {
		return
	}
	f.State = &v
	f.MarkChanged("state")
}

func (f *FileProgress) SetPercent(ctx Ctx, v float64) {
	f.Tracker.Bind(ctx)
	SetField(&f.Tracker, "percent", &f.Percent, v)
}

func (f *FileProgress) SetMessage(ctx Ctx, v string) {
	f.Tracker.Bind(ctx)
	if f.Message != nil && *f.Message == v {
		return
	}
	f.Message = &v
	f.MarkChanged("message")
}

// Latency derives a round-trip time from the last ping/pong pair.
type Latency struct {
	Tracker
	pingAtMs int64
	pongAtMs int64
}

func (l *Latency) RecordPing(ctx Ctx, atMs int64) {
	l.Tracker.Bind(ctx)
	l.pingAtMs = atMs
}

func (l *Latency) RecordPong(ctx Ctx, atMs int64) {
	l.Tracker.Bind(ctx)
	SetField(&l.Tracker, "ms", &l.pongAtMs, atMs)
}

func (l *Latency) GetLatency() int64 {
	if l.pingAtMs == 0 {
		return 0
	}
	return l.pongAtMs - l.pingAtMs
}

// Firmware describes the printer's firmware identity.
type Firmware struct {
	Tracker
	Name    string
	Version string
	Link    string
}

func (f *Firmware) Set(ctx Ctx, name, version, link string) {
	f.Tracker.Bind(ctx)
	SetField(&f.Tracker, "name", &f.Name, name)
	SetField(&f.Tracker, "version", &f.Version, version)
	SetField(&f.Tracker, "link", &f.Link, link)
}

func (f *Firmware) Fields() map[string]any {
	return map[string]any{"name": f.Name, "version": f.Version, "link": f.Link}
}

// FirmwareWarning carries a one-shot advisory about unsafe firmware.
type FirmwareWarning struct {
	Tracker
	WarningType string
	Message     string
}

func (f *FirmwareWarning) Set(ctx Ctx, warningType, message string) {
	f.Tracker.Bind(ctx)
	SetField(&f.Tracker, "warning_type", &f.WarningType, warningType)
	SetField(&f.Tracker, "message", &f.Message, message)
}

// AmbientTemperature is a single ambient-air reading.
type AmbientTemperature struct {
	Tracker
	Ambient float64
}

func (a *AmbientTemperature) Set(ctx Ctx, v float64) {
	a.Tracker.Bind(ctx)
	SetField(&a.Tracker, "ambient", &a.Ambient, v)
}

// FilamentSensor reports the runout sensor's state.
type FilamentSensor struct {
	Tracker
	State FilamentSensorState
}

func (f *FilamentSensor) Set(ctx Ctx, v FilamentSensorState) {
	f.Tracker.Bind(ctx)
	SetField(&f.Tracker, "state", &f.State, v)
}
