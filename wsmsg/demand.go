package wsmsg

import (
	"encoding/json"
	"fmt"
)

// Demand is a decoded demand payload: the concrete Data value is one of
// the *DemandData structs below, selected by Type.
type Demand struct {
	Type DemandType
	Data any
}

type TerminalDemandData struct {
	Enabled bool `json:"enabled"`
}

type GcodeDemandData struct {
	List []string `json:"list"`
}

type WebcamSnapshotDemandData struct {
	ID       *string `json:"id,omitempty"`
	Timer    *int    `json:"timer,omitempty"`
	Endpoint *string `json:"endpoint,omitempty"`
}

type FileDemandData struct {
	JobID        *int            `json:"job_id,omitempty"`
	URL          *string         `json:"url,omitempty"`
	CdnURL       *string         `json:"cdn_url,omitempty"`
	AutoStart    bool            `json:"auto_start"`
	FileName     *string         `json:"file_name,omitempty"`
	FileID       *string         `json:"file_id,omitempty"`
	FileSize     *int64          `json:"file_size,omitempty"`
	StartOptions map[string]bool `json:"start_options,omitempty"`
	ZipPrintable *string         `json:"zip_printable,omitempty"`
	MmsMap       []int           `json:"mms_map,omitempty"`
	ActionToken  *string         `json:"action_token,omitempty"`
}

type PluginInstallDemandData struct {
	Plugins []map[string]any `json:"plugins,omitempty"`
}

type PluginUninstallDemandData struct {
	Plugins []any `json:"plugins,omitempty"`
}

type WebcamSettingsUpdatedDemandData struct {
	Settings map[string]any `json:"settings,omitempty"`
}

// StreamOnDemandData's Interval arrives in milliseconds on the wire and
// is normalized to seconds here, mirroring the source's field_validator
// (default 300ms -> 0.3s when absent).
type StreamOnDemandData struct {
	Interval float64 `json:"-"`
}

func (d *StreamOnDemandData) UnmarshalJSON(b []byte) error {
	var raw struct {
		Interval *float64 `json:"interval"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Interval == nil {
		d.Interval = 300.0 / 1000
		return nil
	}
	d.Interval = *raw.Interval / 1000
	return nil
}

type SetPrinterProfileDemandData struct {
	PrinterProfile any `json:"printer_profile,omitempty"`
}

type BasicMaterialData struct {
	Ext        int     `json:"ext"`
	Type       *string `json:"type,omitempty"`
	Color      *string `json:"color,omitempty"`
	Hex        *string `json:"hex,omitempty"`
}

type SetMaterialDataDemandData struct {
	Materials []BasicMaterialData `json:"materials"`
}

type GetGcodeScriptBackupsDemandData struct {
	Force bool `json:"force"`
}

type HasGcodeChangesDemandData struct {
	Scripts any `json:"scripts,omitempty"`
}

type DisableWebsocketsDemandData struct {
	WebsocketReady bool `json:"websocket_ready"`
}

type SendLogsDemandData struct {
	Token   string   `json:"token"`
	Logs    []string `json:"logs"`
	MaxBody int      `json:"max_body"`
}

func (d SendLogsDemandData) SendMain() bool   { return contains(d.Logs, "main") }
func (d SendLogsDemandData) SendPlugin() bool { return contains(d.Logs, "plugin") }
func (d SendLogsDemandData) SendSerial() bool { return contains(d.Logs, "serial") }

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// emptyDemands are payload-free: their presence is the whole message.
var emptyDemands = map[DemandType]bool{
	DemandPause: true, DemandResume: true, DemandCancel: true,
	DemandTestWebcam: true, DemandStartPrint: true, DemandConnectPrinter: true,
	DemandDisconnectPrinter: true, DemandSystemRestart: true, DemandSystemShutdown: true,
	DemandApiRestart: true, DemandApiShutdown: true, DemandUpdate: true,
	DemandStreamOff: true, DemandRefreshMaterialData: true, DemandPsuKeepalive: true,
	DemandPsuOn: true, DemandPsuOff: true, DemandGotoWsProd: true, DemandGotoWsTest: true,
}

// DecodeDemand discriminates a demand envelope's data payload by its
// inner "demand" field, mirroring messages.py's DemandMsgKind union.
func DecodeDemand(raw json.RawMessage) (Demand, error) {
	var head struct {
		Demand DemandType `json:"demand"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Demand{}, fmt.Errorf("decoding demand discriminator: %w", err)
	}

	if emptyDemands[head.Demand] {
		return Demand{Type: head.Demand, Data: nil}, nil
	}

	var data any
	var err error

	switch head.Demand {
	case DemandTerminal:
		var d TerminalDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandGcode:
		var d GcodeDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandWebcamSnapshot:
		var d WebcamSnapshotDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandFile:
		var d FileDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandPluginInstall:
		var d PluginInstallDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandPluginUninstall:
		var d PluginUninstallDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandWebcamSettingsUpdated:
		var d WebcamSettingsUpdatedDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandStreamOn:
		var d StreamOnDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandSetPrinterProfile:
		var d SetPrinterProfileDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandSetMaterialData:
		var d SetMaterialDataDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandGetGcodeScriptBackups:
		var d GetGcodeScriptBackupsDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandHasGcodeChanges:
		var d HasGcodeChangesDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandDisableWebsockets:
		var d DisableWebsocketsDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	case DemandSendLogs:
		var d SendLogsDemandData
		err = json.Unmarshal(raw, &d)
		data = d
	default:
		return Demand{}, fmt.Errorf("unknown demand type %q", head.Demand)
	}

	if err != nil {
		return Demand{}, fmt.Errorf("decoding demand %q payload: %w", head.Demand, err)
	}

	return Demand{Type: head.Demand, Data: data}, nil
}
