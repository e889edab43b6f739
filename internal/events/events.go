package events

import "context"

// Streams
const (
	StreamQuest = "events:quest"
)

// Event types
const (
	EventQuestCompleted = "quest_completed"
	EventComboActivated = "combo_activated"
	EventComboClaimed   = "combo_claimed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// QuestCompleted is published for every successful quest action and
// feeds the live activity ticker.
func QuestCompleted(address string, questID, points int, txID, chainType string) Event {
	return Event{
		Type: EventQuestCompleted,
		Payload: map[string]any{
			"address":  address,
			"quest_id": questID,
			"points":   points,
			"tx_id":    txID,
			"chain":    chainType,
		},
	}
}

// ComboActivated marks the moment the combo window closed with all
// trigger quests done.
func ComboActivated(address string) Event {
	return Event{
		Type:    EventComboActivated,
		Payload: map[string]any{"address": address},
	}
}

// ComboClaimed is published when the on-chain bonus claim succeeds.
func ComboClaimed(address, txID, chainType string) Event {
	return Event{
		Type: EventComboClaimed,
		Payload: map[string]any{
			"address": address,
			"tx_id":   txID,
			"chain":   chainType,
		},
	}
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
