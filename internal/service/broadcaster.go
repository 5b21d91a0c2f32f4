package service

// Broadcaster pushes state to a tab's live connections (avoids import cycle with ws)
type Broadcaster interface {
	BroadcastToTab(tabID string, msgType string, payload interface{})
	DisconnectTab(tabID string)
}

// MsgState carries a Snapshot
const MsgState = "state"
