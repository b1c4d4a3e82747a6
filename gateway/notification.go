package gateway

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Order id field names the gateways use, in fixed priority order.
var orderIDAliases = []string{"merchantOrderId", "merchant_order_id", "bill_link_id"}

// RawNotification is an inbound webhook payload decoded according to its
// declared content type, flattened to string fields. Adapters verify
// signatures against these fields.
type RawNotification struct {
	ContentType string
	Fields      map[string]string
}

// Has reports whether a field is present and non-empty.
func (n *RawNotification) Has(key string) bool {
	return n.Fields[key] != ""
}

// Get returns a field value, or "" when absent.
func (n *RawNotification) Get(key string) string {
	return n.Fields[key]
}

// OrderID extracts the referenced order id using each known alias in
// priority order. Returns "" when no alias is present.
func (n *RawNotification) OrderID() string {
	for _, alias := range orderIDAliases {
		if v := n.Fields[alias]; v != "" {
			return v
		}
	}
	return ""
}

// ParseBody decodes a webhook body per its declared content type. Duitku
// posts application/x-www-form-urlencoded, Flip posts application/json; the
// selection follows the Content-Type header, never payload guessing.
func ParseBody(contentType string, body []byte) (*RawNotification, error) {
	raw := &RawNotification{ContentType: contentType, Fields: make(map[string]string)}

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("malformed form body: %w", err)
		}
		for key := range values {
			raw.Fields[key] = values.Get(key)
		}
		return raw, nil
	}

	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed json body: %w", err)
	}
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			raw.Fields[key] = v
		case json.Number:
			raw.Fields[key] = v.String()
		case bool:
			raw.Fields[key] = fmt.Sprintf("%t", v)
		}
		// nested objects and arrays carry no signing material; skipped
	}
	return raw, nil
}
