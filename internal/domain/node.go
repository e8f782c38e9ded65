package domain

import "time"

// NodeStatus is the liveness classification derived from the time since
// a node was last heard from. It is never stored.
type NodeStatus string

const (
	NodeConnected    NodeStatus = "connected"
	NodeTimeout      NodeStatus = "timeout"
	NodeDisconnected NodeStatus = "disconnected"
)

// Liveness windows
const (
	ConnectedWindow = 30 * time.Second
	TimeoutWindow   = 60 * time.Second
)

// DeriveNodeStatus classifies a node by the elapsed time between its
// last contact and now.
func DeriveNodeStatus(lastSeen, now time.Time) NodeStatus {
	elapsed := now.Sub(lastSeen)
	switch {
	case elapsed <= ConnectedWindow:
		return NodeConnected
	case elapsed <= TimeoutWindow:
		return NodeTimeout
	default:
		return NodeDisconnected
	}
}

// NodeInfo is a registry snapshot entry for one registered node.
type NodeInfo struct {
	Hostname         string     `json:"hostname"`
	Address          string     `json:"address"`
	Port             int        `json:"port"`
	LastSeen         time.Time  `json:"last_seen"`
	Status           NodeStatus `json:"status"`
	SecondsSinceSeen float64    `json:"seconds_since_seen"`
}
