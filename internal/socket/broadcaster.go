package socket

import "log"

// Broadcaster provides high-level methods for pushing session events
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Session Broadcasting
// ============================================

// BroadcastViewChanged tells a session's tabs which top-level view to render.
func (b *Broadcaster) BroadcastViewChanged(sessionID, view string, session map[string]interface{}) {
	b.hub.SendToSession(sessionID, MessageViewChanged, map[string]interface{}{
		"view":    view,
		"session": session,
	})
}

// BroadcastSessionClosed disconnects a session after telling its tabs why.
func (b *Broadcaster) BroadcastSessionClosed(sessionID string) {
	b.hub.CloseSession(sessionID, MessageSessionClosed)
}

// ============================================
// Dashboard Broadcasting
// ============================================

func (b *Broadcaster) BroadcastTaskUpdated(sessionID, action string, task map[string]interface{}, fromStatus string) {
	payload := map[string]interface{}{
		"action": action,
		"task":   task,
	}
	if fromStatus != "" {
		payload["fromStatus"] = fromStatus
	}

	log.Printf("📡 BroadcastTaskUpdated: session=%s, taskId=%v, action=%s", sessionID, task["id"], action)

	b.hub.SendToSession(sessionID, MessageTaskUpdated, payload)
}

func (b *Broadcaster) BroadcastMemberRequestDecided(sessionID string, request map[string]interface{}) {
	b.hub.SendToSession(sessionID, MessageMemberRequestDecided, map[string]interface{}{
		"request": request,
	})
}

func (b *Broadcaster) BroadcastDeadlineReminder(sessionID string, tasks []map[string]interface{}) {
	b.hub.SendToSession(sessionID, MessageDeadlineReminder, map[string]interface{}{
		"tasks": tasks,
	})
}

// ============================================
// Toast Broadcasting
// ============================================

func (b *Broadcaster) BroadcastToast(sessionID, toastID, message string, durationMs int64) {
	b.hub.SendToSession(sessionID, MessageToast, map[string]interface{}{
		"id":         toastID,
		"message":    message,
		"durationMs": durationMs,
	})
}

func (b *Broadcaster) BroadcastToastDismissed(sessionID, toastID string) {
	b.hub.SendToSession(sessionID, MessageToastDismissed, map[string]interface{}{
		"id": toastID,
	})
}
