package chatbot

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

// EventJob names queued inbound events.
const EventJob = "chatbot.event"

// EncodeEvent serializes an event for a job queue.
func EncodeEvent(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return payload, nil
}

// EventShardKey returns the sender of a queued event so one user's events
// stay ordered. Undecodable payloads share the empty key.
func EventShardKey(payload []byte) string {
	var ev struct {
		From string `json:"from"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ""
	}
	return ev.From
}

// JobHandler adapts the router to a queue handler.
func JobHandler(r Router) func(ctx context.Context, name string, payload []byte) error {
	return func(ctx context.Context, name string, payload []byte) error {
		if name != EventJob {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "unknown job "+name, nil)
		}
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "decode event", err)
		}
		return r.Dispatch(ctx, ev)
	}
}
