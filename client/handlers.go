package client

import (
	"github.com/simplyprint/ws-client/state"
	"github.com/simplyprint/ws-client/wsmsg"
)

// registerDefaultHandlers wires the demand handlers every client gets
// out of the box: the ones that only touch this module's own state
// tree (job life-cycle, printer settings, material data) update
// PrinterState directly; everything that would require driving an
// actual printer (gcode, terminal, webcam, plugins, firmware update)
// is logged and left for the embedding application to override via
// RegisterHandler.
func registerDefaultHandlers(c *Client) {
	c.RegisterHandler(wsmsg.DemandStartPrint, handleStartPrint)
	c.RegisterHandler(wsmsg.DemandPause, handlePause)
	c.RegisterHandler(wsmsg.DemandResume, handleResume)
	c.RegisterHandler(wsmsg.DemandCancel, handleCancel)
	c.RegisterHandler(wsmsg.DemandSetPrinterProfile, handleSetPrinterProfile)
	c.RegisterHandler(wsmsg.DemandSetMaterialData, handleSetMaterialData)
	c.RegisterHandler(wsmsg.DemandRefreshMaterialData, handleRefreshMaterialData)
	c.RegisterHandler(wsmsg.DemandWebcamSettingsUpdated, handleWebcamSettingsUpdated)
	c.RegisterHandler(wsmsg.DemandPsuOn, handlePsuOn)
	c.RegisterHandler(wsmsg.DemandPsuOff, handlePsuOff)

	for _, passthrough := range []wsmsg.DemandType{
		wsmsg.DemandTerminal, wsmsg.DemandGcode, wsmsg.DemandTestWebcam,
		wsmsg.DemandWebcamSnapshot, wsmsg.DemandFile, wsmsg.DemandConnectPrinter,
		wsmsg.DemandDisconnectPrinter, wsmsg.DemandSystemRestart, wsmsg.DemandSystemShutdown,
		wsmsg.DemandApiRestart, wsmsg.DemandApiShutdown, wsmsg.DemandUpdate,
		wsmsg.DemandPluginInstall, wsmsg.DemandPluginUninstall, wsmsg.DemandStreamOn,
		wsmsg.DemandStreamOff, wsmsg.DemandGetGcodeScriptBackups, wsmsg.DemandHasGcodeChanges,
		wsmsg.DemandPsuKeepalive, wsmsg.DemandDisableWebsockets, wsmsg.DemandGotoWsProd,
		wsmsg.DemandGotoWsTest, wsmsg.DemandSendLogs,
	} {
		t := passthrough
		c.RegisterHandler(t, func(c *Client, d wsmsg.Demand) error {
			if c.logger != nil {
				c.logger.Debugw("demand has no built-in handler, ignoring", "demand", t)
			}
			return nil
		})
	}
}

func handleStartPrint(c *Client, d wsmsg.Demand) error {
	c.PrinterState.JobInfo.SetStarted(c)
	c.PrinterState.SetStatus(state.StatusPrinting)
	return nil
}

func handlePause(c *Client, d wsmsg.Demand) error {
	c.PrinterState.SetStatus(state.StatusPausing)
	return nil
}

func handleResume(c *Client, d wsmsg.Demand) error {
	c.PrinterState.SetStatus(state.StatusResuming)
	return nil
}

func handleCancel(c *Client, d wsmsg.Demand) error {
	c.PrinterState.JobInfo.SetCancelled(c)
	c.PrinterState.SetStatus(state.StatusCancelling)
	return nil
}

func handleSetPrinterProfile(c *Client, d wsmsg.Demand) error {
	return nil
}

func handleSetMaterialData(c *Client, d wsmsg.Demand) error {
	data, ok := d.Data.(wsmsg.SetMaterialDataDemandData)
	if !ok {
		return nil
	}
	for _, m := range data.Materials {
		if m.Ext < 0 || m.Ext >= len(c.PrinterState.Materials) {
			continue
		}
		slot := c.PrinterState.Materials[m.Ext]
		materialType, color, hex := slot.Type, slot.Color, slot.Hex
		if m.Type != nil {
			materialType = *m.Type
		}
		if m.Color != nil {
			color = *m.Color
		}
		if m.Hex != nil {
			hex = *m.Hex
		}
		slot.Set(c, materialType, color, hex)
	}
	return nil
}

func handleRefreshMaterialData(c *Client, d wsmsg.Demand) error {
	c.PrinterState.RequestMaterialRefresh()
	return nil
}

func handleWebcamSettingsUpdated(c *Client, d wsmsg.Demand) error {
	data, ok := d.Data.(wsmsg.WebcamSettingsUpdatedDemandData)
	if !ok {
		return nil
	}
	if v, ok := data.Settings["flipH"].(bool); ok {
		c.PrinterState.WebcamSettings.SetFlipH(c, v)
	}
	if v, ok := data.Settings["flipV"].(bool); ok {
		c.PrinterState.WebcamSettings.SetFlipV(c, v)
	}
	return nil
}

func handlePsuOn(c *Client, d wsmsg.Demand) error {
	c.PrinterState.PsuInfo.Set(c, true)
	return nil
}

func handlePsuOff(c *Client, d wsmsg.Demand) error {
	c.PrinterState.PsuInfo.Set(c, false)
	return nil
}
