package utils

import (
	"lms/config"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

var webhookClient = resty.New().SetTimeout(10 * time.Second)

// NotifyEvent posts a domain event to the configured webhook endpoint.
// Fire-and-forget: delivery failures are logged, never surfaced to the
// request that produced the event.
func NotifyEvent(event string, payload map[string]interface{}) {
	url := config.AppConfig.NotifyWebhookURL
	if url == "" {
		return
	}

	go func() {
		body := map[string]interface{}{
			"event":     event,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"payload":   payload,
		}

		resp, err := webhookClient.R().
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(url)
		if err != nil {
			log.Printf("Error delivering webhook event %s: %v", event, err)
			return
		}
		if resp.StatusCode() >= 300 {
			log.Printf("Webhook event %s rejected with status %d", event, resp.StatusCode())
		}
	}()
}
