package state

// PrinterStatus mirrors core/state/models.py's PrinterStatus StrEnum.
type PrinterStatus string

const (
	StatusOperational PrinterStatus = "operational"
	StatusPrinting     PrinterStatus = "printing"
	StatusOffline      PrinterStatus = "offline"
	StatusPaused       PrinterStatus = "paused"
	StatusPausing      PrinterStatus = "pausing"
	StatusCancelling   PrinterStatus = "cancelling"
	StatusResuming     PrinterStatus = "resuming"
	StatusError        PrinterStatus = "error"
	StatusNotReady     PrinterStatus = "not_ready"
)

// FileProgressState mirrors FileProgressStateEnum.
type FileProgressState string

const (
	FileProgressDownloading FileProgressState = "downloading"
	FileProgressError       FileProgressState = "error"
	FileProgressPending     FileProgressState = "pending"
	FileProgressStarted     FileProgressState = "started"
	FileProgressReady       FileProgressState = "ready"
)

// FilamentSensorState mirrors FilamentSensorEnum.
type FilamentSensorState string

const (
	FilamentLoaded FilamentSensorState = "loaded"
	FilamentRunout FilamentSensorState = "runout"
)

// CpuFlag mirrors PrinterCpuFlag, a bitmask of advisory CPU conditions.
type CpuFlag int

const (
	CpuFlagNone        CpuFlag = 0
	CpuFlagThrottled   CpuFlag = 1 << 0
	CpuFlagUnderVoltage CpuFlag = 1 << 1
	CpuFlagOverTemp    CpuFlag = 1 << 2
)
