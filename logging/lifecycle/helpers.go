package lifecycle

import (
	"context"

	"arena/server/logging"
)

const (
	// EventPlayerJoined is emitted when a rostered player attaches a client.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerDisconnected is emitted when a player's client goes away.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	// EventPhaseChanged is emitted when the match advances to a new phase.
	EventPhaseChanged logging.EventType = "lifecycle.phase_changed"
	// EventHeroRespawned is emitted when a dead hero returns to its fountain.
	EventHeroRespawned logging.EventType = "lifecycle.hero_respawned"
	// EventLevelUp is emitted when a hero gains a level.
	EventLevelUp logging.EventType = "lifecycle.level_up"
)

// PlayerJoinedPayload captures roster metadata for a joining player.
type PlayerJoinedPayload struct {
	PlayerName string `json:"playerName"`
	Champion   string `json:"champion"`
	Team       string `json:"team"`
	Reconnect  bool   `json:"reconnect,omitempty"`
}

// PlayerDisconnectedPayload captures the reason a player left.
type PlayerDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// PhaseChangedPayload names the previous and next phase.
type PhaseChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HeroRespawnedPayload captures the respawn location.
type HeroRespawnedPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LevelUpPayload captures the new level.
type LevelUpPayload struct {
	Level       int `json:"level"`
	SkillPoints int `json:"skillPoints"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerJoined, logging.SeverityInfo, tick, actor, payload, extra)
}

// PlayerDisconnected publishes a player disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDisconnectedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerDisconnected, logging.SeverityInfo, tick, actor, payload, extra)
}

// PhaseChanged publishes a match phase transition.
func PhaseChanged(ctx context.Context, pub logging.Publisher, tick uint64, payload PhaseChangedPayload, extra map[string]any) {
	publish(ctx, pub, EventPhaseChanged, logging.SeverityInfo, tick, logging.WorldRef(), payload, extra)
}

// HeroRespawned publishes a respawn event.
func HeroRespawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload HeroRespawnedPayload, extra map[string]any) {
	publish(ctx, pub, EventHeroRespawned, logging.SeverityInfo, tick, actor, payload, extra)
}

// LevelUp publishes a level gain.
func LevelUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LevelUpPayload, extra map[string]any) {
	publish(ctx, pub, EventLevelUp, logging.SeverityDebug, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
