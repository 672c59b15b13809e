package push

import (
	"encoding/json"
	"strings"
)

// Notification defaults.
const (
	DefaultTitle = "Task Update"
	DefaultTag   = "task-notification"
	DefaultIcon  = "/logo192.png"
	DefaultURL   = "/dashboard"
	FallbackBody = "You have a task update"
)

// Message is the push payload sent by the backend. Every field is optional.
type Message struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon"`
	Badge string         `json:"badge"`
	URL   string         `json:"url"`
	Tag   string         `json:"tag"`
	Data  map[string]any `json:"data"`
}

// Notification is what gets shown for a push message.
type Notification struct {
	Title    string
	Body     string
	Icon     string
	Badge    string
	Tag      string
	Renotify bool
	Data     map[string]any
}

// ParseMessage turns a raw push payload into a notification. It never fails:
// an undecodable payload becomes a generic notification whose body is the
// raw text, and an empty one gets FallbackBody.
func ParseMessage(payload []byte) Notification {
	var msg Message
	raw := strings.TrimSpace(string(payload))
	switch {
	case raw == "":
		msg.Body = FallbackBody
	case json.Unmarshal(payload, &msg) != nil:
		msg = Message{Body: raw}
	}

	n := Notification{
		Title:    orDefault(msg.Title, DefaultTitle),
		Body:     msg.Body,
		Icon:     orDefault(msg.Icon, DefaultIcon),
		Badge:    orDefault(msg.Badge, DefaultIcon),
		Tag:      orDefault(msg.Tag, DefaultTag),
		Renotify: true,
		Data:     map[string]any{"url": orDefault(msg.URL, DefaultURL)},
	}
	for k, v := range msg.Data {
		n.Data[k] = v
	}
	return n
}

// TargetURL is the page to open when the notification is clicked.
func (n Notification) TargetURL() string {
	if u, ok := n.Data["url"].(string); ok && u != "" {
		return u
	}
	return DefaultURL
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
