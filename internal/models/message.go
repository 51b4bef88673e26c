package models

import "time"

// MessageType はチャットメッセージの発信元の種別
type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeAgent  MessageType = "agent"
	MessageTypeSystem MessageType = "system"
)

// AgentType はメッセージを送ったシミュレーション上のエージェント
type AgentType string

const (
	AgentEDCoordinator         AgentType = "ed_coordinator"
	AgentResourceManager       AgentType = "resource_manager"
	AgentSpecialistCoordinator AgentType = "specialist_coordinator"
	AgentLabService            AgentType = "lab_service"
	AgentPharmacy              AgentType = "pharmacy"
	AgentBedManagement         AgentType = "bed_management"
)

// agentColors はエージェント種別ごとの表示色 (ANSI 256色)
var agentColors = map[AgentType]string{
	AgentEDCoordinator:         "75",  // blue
	AgentResourceManager:       "114", // green
	AgentSpecialistCoordinator: "141", // purple
	AgentLabService:            "221", // yellow
	AgentPharmacy:              "211", // pink
	AgentBedManagement:         "80",  // cyan
}

// DefaultAgentColor は未知または未指定のエージェントに使う灰色
const DefaultAgentColor = "245"

// Color はエージェント種別に対応する表示色を返す
func (a AgentType) Color() string {
	if c, ok := agentColors[a]; ok {
		return c
	}
	return DefaultAgentColor
}

// ChatMessage はチャットパネルに表示されるメッセージ
type ChatMessage struct {
	ID        string      `json:"id"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	AgentType AgentType   `json:"agent_type,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
