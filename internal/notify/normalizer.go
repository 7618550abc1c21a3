// Package notify turns raw broker payloads into canonical notification
// records and owns their bounded, deduplicated in-memory store.
package notify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vascomart-client/internal/models"
)

// Normalizer converts raw frame bodies into Notifications. The clock is
// injectable for tests.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock builds a Normalizer with a fixed clock source.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize parses one raw frame body into a Notification. Parse
// failures degrade to a fallback notification carrying the raw text; a
// JSON null yields nil. Nothing here ever panics or returns an error to
// the caller.
func (n *Normalizer) Normalize(body []byte) *models.Notification {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return n.fallback(body)
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return n.fallback(body)
	}
	if payload == nil {
		return nil
	}

	obj, isObject := payload.(map[string]interface{})
	if !isObject {
		// bare number, string or array: generic event with the
		// stringified value as message
		return n.generic(nil, trimmed, body)
	}

	if isOrderEvent(obj) {
		return n.order(obj, body)
	}
	return n.generic(obj, "", body)
}

// DedupKey derives the identity used to collapse repeated deliveries of
// the same logical event: id, else orderId, else a canonical
// serialization of the whole payload.
func (n *Normalizer) DedupKey(body []byte) string {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}

	if obj, ok := payload.(map[string]interface{}); ok {
		if id, ok := obj["id"]; ok {
			return stringifyID(id)
		}
		if id, ok := obj["orderId"]; ok {
			return stringifyID(id)
		}
	}

	// Go maps marshal with sorted keys, so this is canonical; two
	// structurally identical but distinct events will collide. Known
	// approximation, acceptable while upstream supplies identity fields.
	canonical, err := json.Marshal(payload)
	if err != nil {
		return string(body)
	}
	return string(canonical)
}

// isOrderEvent classifies the payload. orderId always marks an order;
// a bare id only does when the payload carries no display message of
// its own, so pre-composed notifications pass through untouched.
func isOrderEvent(obj map[string]interface{}) bool {
	if _, ok := obj["orderId"]; ok {
		return true
	}
	if _, ok := obj["id"]; ok {
		_, hasMessage := obj["message"]
		_, hasTitle := obj["title"]
		return !hasMessage && !hasTitle
	}
	return false
}

func (n *Normalizer) order(obj map[string]interface{}, raw []byte) *models.Notification {
	orderID := "N/A"
	if v, ok := obj["orderId"]; ok {
		orderID = stringifyID(v)
	} else if v, ok := obj["id"]; ok {
		orderID = stringifyID(v)
	}

	total := orderTotal(obj)
	formattedTotal := strconv.FormatFloat(total, 'f', 2, 64)

	var b strings.Builder
	fmt.Fprintf(&b, "Order total: $%s", formattedTotal)
	for _, line := range itemLines(obj) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if customer := customerLine(obj); customer != "" {
		b.WriteString("\n")
		b.WriteString(customer)
	}

	notifType := models.TypeSuccess
	if t, ok := obj["type"].(string); ok && t == string(models.TypeOrder) {
		notifType = models.TypeOrder
	}

	now := n.now()
	return &models.Notification{
		ID:      fmt.Sprintf("order-%s-%d", orderID, now.UnixMilli()),
		Title:   fmt.Sprintf("New Order #%s", orderID),
		Message: b.String(),
		Date:    n.eventDate(obj, "orderDate", "timestamp", "date"),
		Type:    notifType,
		Read:    false,
		RawData: rawJSON(raw),
	}
}

func (n *Normalizer) generic(obj map[string]interface{}, stringified string, raw []byte) *models.Notification {
	title := "Notification"
	message := stringified
	notifType := models.TypeInfo
	idPart := ""

	if obj != nil {
		if t, ok := obj["title"].(string); ok && t != "" {
			title = t
		}
		if m, ok := obj["message"].(string); ok && m != "" {
			message = m
		} else if message == "" {
			if data, err := json.Marshal(obj); err == nil {
				message = string(data)
			}
		}
		if t, ok := obj["type"].(string); ok && t != "" {
			notifType = models.NotificationType(t)
		}
		if id, ok := obj["id"]; ok {
			idPart = stringifyID(id) + "-"
		}
	}

	now := n.now()
	return &models.Notification{
		ID:      fmt.Sprintf("msg-%s%d", idPart, now.UnixMilli()),
		Title:   title,
		Message: message,
		Date:    n.eventDate(obj, "timestamp", "date"),
		Type:    notifType,
		Read:    false,
		RawData: rawJSON(raw),
	}
}

// fallback produces the degraded notification for unparsable payloads;
// the user-visible signal is never dropped entirely.
func (n *Normalizer) fallback(raw []byte) *models.Notification {
	return &models.Notification{
		ID:      fmt.Sprintf("msg-%d", n.now().UnixMilli()),
		Title:   "Notification",
		Message: string(raw),
		Date:    n.now().UTC().Format(time.RFC3339),
		Type:    models.TypeInfo,
		Read:    false,
		RawData: rawJSON(raw),
	}
}

// orderTotal computes the monetary total: a positive explicit total
// wins; otherwise line items are summed with invalid price treated as 0
// and invalid or missing quantity as 1.
func orderTotal(obj map[string]interface{}) float64 {
	if total, ok := toFloat(obj["total"]); ok && total > 0 {
		return total
	}

	products := orderProducts(obj)
	sum := 0.0
	for _, p := range products {
		price, ok := toFloat(p["price"])
		if !ok {
			price = 0
		}
		quantity, ok := toFloat(p["quantity"])
		if !ok {
			quantity = 1
		}
		sum += price * quantity
	}
	return sum
}

func orderProducts(obj map[string]interface{}) []map[string]interface{} {
	details, ok := obj["orderDetails"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := details["products"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if p, ok := item.(map[string]interface{}); ok {
			out = append(out, p)
		}
	}
	return out
}

func itemLines(obj map[string]interface{}) []string {
	products := orderProducts(obj)
	lines := make([]string, 0, len(products))
	for _, p := range products {
		name, _ := p["name"].(string)
		if name == "" {
			name = "item"
		}
		price, ok := toFloat(p["price"])
		if !ok {
			price = 0
		}
		quantity, ok := toFloat(p["quantity"])
		if !ok {
			quantity = 1
		}
		lines = append(lines, fmt.Sprintf("- %s x%s ($%s)",
			name,
			strconv.FormatFloat(quantity, 'f', -1, 64),
			strconv.FormatFloat(price, 'f', 2, 64)))
	}
	return lines
}

func customerLine(obj map[string]interface{}) string {
	name, _ := obj["customerName"].(string)
	email, _ := obj["customerEmail"].(string)
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("Customer: %s <%s>", name, email)
	case name != "":
		return "Customer: " + name
	case email != "":
		return "Customer: " + email
	default:
		return ""
	}
}

func (n *Normalizer) eventDate(obj map[string]interface{}, fields ...string) string {
	if obj != nil {
		for _, field := range fields {
			if v, ok := obj[field].(string); ok && v != "" {
				return v
			}
		}
	}
	return n.now().UTC().Format(time.RFC3339)
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// stringifyID renders a JSON id value without a float suffix for whole
// numbers, so orderId 42 reads as "42".
func stringifyID(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func rawJSON(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out
	}
	// preserve unparsable payloads as a JSON string
	encoded, err := json.Marshal(string(raw))
	if err != nil {
		return nil
	}
	return encoded
}
