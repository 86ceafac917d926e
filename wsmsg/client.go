package wsmsg

import "github.com/simplyprint/ws-client/printerconfig"

// AddConnectionMsg builds the MULTI-mode handshake message a client
// sends to request being attached to the shared socket.
func AddConnectionMsg(cfg *printerconfig.Config, allowSetup bool) Out {
	id := cfg.ID
	if cfg.InSetup {
		id = 0
	}

	return Out{
		Type: ClientMsgAddConnection,
		Data: map[string]any{
			"pid":         id,
			"token":       cfg.Token,
			"unique_id":   cfg.UniqueID,
			"allow_setup": allowSetup,
			"client_ip":   cfg.PublicIP,
		},
	}
}

// RemoveConnectionMsg builds the MULTI-mode handshake message a client
// sends to request being detached from the shared socket.
func RemoveConnectionMsg(cfg *printerconfig.Config) Out {
	id := cfg.ID
	if cfg.InSetup {
		id = 0
	}

	return Out{
		Type: ClientMsgRemoveConnection,
		Data: map[string]any{
			"pid":       id,
			"unique_id": cfg.UniqueID,
		},
	}
}
