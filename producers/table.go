package producers

import (
	"math"

	"github.com/simplyprint/ws-client/state"
	"github.com/simplyprint/ws-client/wsmsg"
)

var machineDataEntry = Entry{
	Kind:  wsmsg.ClientMsgMachineData,
	Paths: []string{"info"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		return ps.Info.Fields()
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.Info.ResetChanged(v) },
}

var firmwareEntry = Entry{
	Kind:  wsmsg.ClientMsgFirmware,
	Paths: []string{"firmware"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		fw := map[string]any{}
		for key, value := range ps.Firmware.Fields() {
			if s, ok := value.(string); ok && s == "" {
				continue
			}
			if key == "name" {
				fw["firmware"] = value
			} else {
				fw["firmware_"+key] = value
			}
		}
		return map[string]any{"fw": fw}
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.Firmware.ResetChanged(v) },
}

var firmwareWarningEntry = Entry{
	Kind:  wsmsg.ClientMsgFirmwareWarning,
	Paths: []string{"firmware_warning"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		out := map[string]any{}
		for key := range ps.FirmwareWarning.ChangedFields() {
			switch key {
			case "warning_type":
				out[key] = ps.FirmwareWarning.WarningType
			case "message":
				out[key] = ps.FirmwareWarning.Message
			}
		}
		return out
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.FirmwareWarning.ResetChanged(v) },
}

var stateChangeEntry = Entry{
	Kind:  wsmsg.ClientMsgStateChange,
	Paths: []string{"status"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		if ps.Status == nil {
			return nil
		}
		return map[string]any{"new": string(*ps.Status)}
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.ResetChanged(v, "status") },
}

var toolEntry = Entry{
	Kind:  wsmsg.ClientMsgTool,
	Paths: []string{"active_tool"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		return map[string]any{"new": ps.ActiveTool}
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.ResetChanged(v, "active_tool") },
}

var temperatureEntry = Entry{
	Kind:  wsmsg.ClientMsgTemperatures,
	Paths: []string{"bed_temperature", "tool_temperatures"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		out := map[string]any{}
		if ps.BedTemperature.HasChanged() {
			out["bed"] = ps.BedTemperature.ToList()
		}
		for i, t := range ps.ToolTemperatures {
			if !t.HasChanged() {
				continue
			}
			out["tool"+itoa(i)] = t.ToList()
		}
		return out
	},
	Reset: func(ps *state.PrinterState, v *uint64) {
		ps.BedTemperature.ResetChanged(v)
		for _, t := range ps.ToolTemperatures {
			t.ResetChanged(v)
		}
	},
	Dispatch: func(ps *state.PrinterState) wsmsg.DispatchMode {
		if _, ok := ps.BedTemperature.ChangedFields()["target"]; ok {
			return wsmsg.DispatchSend
		}
		for _, t := range ps.ToolTemperatures {
			if _, ok := t.ChangedFields()["target"]; ok {
				return wsmsg.DispatchSend
			}
		}
		kind := state.IntervalTemps
		if ps.IsHeating() {
			kind = state.IntervalTempsTarget
		}
		return ps.Intervals.DispatchMode(kind)
	},
}

var ambientTemperatureEntry = Entry{
	Kind:  wsmsg.ClientMsgAmbient,
	Paths: []string{"ambient_temperature"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		return map[string]any{"new": ps.AmbientTemperature.Ambient}
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.AmbientTemperature.ResetChanged(v) },
}

var jobInfoEntry = Entry{
	Kind:  wsmsg.ClientMsgJobInfo,
	Paths: []string{"job_info"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		values := ps.JobInfo.Values()
		if v, ok := values["progress"].(float64); ok {
			values["progress"] = math.Round(v)
		}
		return values
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.JobInfo.ResetChanged(v) },
	Dispatch: func(ps *state.PrinterState) wsmsg.DispatchMode {
		for field := range ps.JobInfo.ChangedFields() {
			if state.JobInfoMutuallyExclusiveFields[field] {
				return wsmsg.DispatchSend
			}
		}
		return ps.Intervals.DispatchMode(state.IntervalJob)
	},
}

var fileProgressEntry = Entry{
	Kind:  wsmsg.ClientMsgFileProgress,
	Paths: []string{"file_progress"},
	Build: func(ps *state.PrinterState, currentJobID *int) map[string]any {
		fp := ps.FileProgress
		if fp.State == nil {
			return nil
		}

		out := map[string]any{"state": string(*fp.State)}

		if currentJobID != nil {
			out["job_id"] = *currentJobID
		}

		if *fp.State == state.FileProgressError {
			msg := "Unknown error"
			if fp.Message != nil {
				msg = *fp.Message
			}
			out["message"] = msg
			return out
		}

		if *fp.State == state.FileProgressDownloading || *fp.State == state.FileProgressStarted {
			out["percent"] = fp.Percent
		}

		return out
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.FileProgress.ResetChanged(v) },
}

var filamentSensorEntry = Entry{
	Kind:  wsmsg.ClientMsgFilamentSensor,
	Paths: []string{"filament_sensor"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		return map[string]any{"state": string(ps.FilamentSensor.State)}
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.FilamentSensor.ResetChanged(v) },
}

var cpuInfoEntry = Entry{
	Kind:  wsmsg.ClientMsgCpuInfo,
	Paths: []string{"cpu_info"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		out := map[string]any{}
		for key := range ps.CpuInfo.ChangedFields() {
			switch key {
			case "usage":
				out[key] = ps.CpuInfo.Usage
			case "temp":
				out[key] = ps.CpuInfo.Temp
			case "memory":
				out[key] = ps.CpuInfo.Memory
			case "flags":
				out[key] = int(ps.CpuInfo.Flags)
			}
		}
		return out
	},
	Reset:    func(ps *state.PrinterState, v *uint64) { ps.CpuInfo.ResetChanged(v) },
	Dispatch: func(ps *state.PrinterState) wsmsg.DispatchMode { return ps.Intervals.DispatchMode(state.IntervalCPU) },
}

var psuEntry = Entry{
	Kind:  wsmsg.ClientMsgPsu,
	Paths: []string{"psu_info"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		return map[string]any{"on": ps.PsuInfo.On}
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.PsuInfo.ResetChanged(v) },
}

var webcamStatusEntry = Entry{
	Kind:  wsmsg.ClientMsgWebcamStatus,
	Paths: []string{"webcam_info"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		return map[string]any{"connected": ps.WebcamInfo.Connected}
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.WebcamInfo.ResetChanged(v) },
}

var webcamEntry = Entry{
	Kind:  wsmsg.ClientMsgWebcam,
	Paths: []string{"webcam_settings"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		out := map[string]any{}
		for key := range ps.WebcamSettings.ChangedFields() {
			switch key {
			case "flipH":
				out[key] = ps.WebcamSettings.FlipH
			case "flipV":
				out[key] = ps.WebcamSettings.FlipV
			}
		}
		return out
	},
	Reset: func(ps *state.PrinterState, v *uint64) { ps.WebcamSettings.ResetChanged(v) },
}

var materialDataEntry = Entry{
	Kind:  wsmsg.ClientMsgMaterialData,
	Paths: []string{"bed", "materials", "mms_layout"},
	Build: func(ps *state.PrinterState, _ *int) map[string]any {
		refresh := ps.ConsumeMaterialRefresh()

		out := map[string]any{}
		if refresh {
			out["refresh"] = true
		}

		if refresh || ps.Bed.HasChanged() {
			out["bed"] = ps.Bed.Fields()
		}

		if refresh || anyChanged(ps.Materials) {
			materials := map[string]any{}
			for _, m := range ps.Materials {
				if refresh || m.HasChanged() {
					materials[itoa(m.Ext)] = m.Fields()
				}
			}
			out["materials"] = materials
		}

		if refresh || anyChanged(ps.MmsLayout) {
			layout := make([]any, len(ps.MmsLayout))
			for i, s := range ps.MmsLayout {
				layout[i] = s.MaterialExt
			}
			out["layout"] = layout
		}

		if refresh || anyChanged(ps.Nozzles) {
			nozzles := make([]any, 0, len(ps.Nozzles))
			for _, n := range ps.Nozzles {
				if refresh || n.HasChanged() {
					nozzles = append(nozzles, n.Fields())
				}
			}
			out["nozzles"] = nozzles
		}

		return out
	},
	Reset: func(ps *state.PrinterState, v *uint64) {
		ps.ResetChanged(v, "mms_layout", "nozzles", "materials", "bed")
		ps.Bed.ResetChanged(v)
		for _, n := range ps.Nozzles {
			n.ResetChanged(v)
		}
		for _, s := range ps.MmsLayout {
			s.ResetChanged(v)
		}
		for _, m := range ps.Materials {
			m.ResetChanged(v)
		}
	},
}

type changeTracked interface{ HasChanged() bool }

func anyChanged[T changeTracked](items []T) bool {
	for _, it := range items {
		if it.HasChanged() {
			return true
		}
	}
	return false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
