package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToTenant(tenantID string, msgType string, payload interface{})
}
