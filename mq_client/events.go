package mq_client

import (
	"encoding/json"

	"github.com/zenithex/zenithex/config"
)

const eventsExchange = "zenithex.events"

// EnqueueEvent fans an event out to the notification/email layer.
// Fire-and-forget: a delivery failure is logged and swallowed so it
// can never roll back the financial transaction that emitted it.
func EnqueueEvent(kind string, memberUID string, event string, payload interface{}) {
	if Connection == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		config.Logger.Errorf("[mq_client] marshal %s event: %v", event, err)
		return
	}

	routingKey := kind + "." + memberUID + "." + event

	if err := Publish(eventsExchange, routingKey, body); err != nil {
		config.Logger.Errorf("[mq_client] publish %s event: %v", event, err)
	}
}
