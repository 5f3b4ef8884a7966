package orderapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"backoffice/internal/model"
)

// unwrap returns the "data" member of an envelope, or the body itself.
func unwrap(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(trimmed, &env) == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return trimmed
}

func decodeOrders(body []byte) ([]model.Order, error) {
	data := unwrap(body)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("expected a list of orders")
	}
	var orders []model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// decodeOrder returns nil unless the body carries a complete order. Partial
// acknowledgements such as {"id":5,"auto_administrador":true} are ignored so
// they never replace a cached row.
func decodeOrder(body []byte) *model.Order {
	data := unwrap(body)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var wrapped struct {
		Orden *model.Order `json:"orden"`
	}
	if json.Unmarshal(data, &wrapped) == nil && wrapped.Orden != nil && isRecord(*wrapped.Orden) {
		return wrapped.Orden
	}
	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil || !isRecord(order) {
		return nil
	}
	return &order
}

func isRecord(o model.Order) bool {
	return o.ID > 0 && strings.TrimSpace(o.NumeroOrden) != ""
}

func decodeUpload(body []byte) *UploadResult {
	res := &UploadResult{Order: decodeOrder(body)}
	for _, doc := range [][]byte{body, unwrap(body)} {
		var payload struct {
			URL string `json:"url"`
		}
		if json.Unmarshal(doc, &payload) == nil && payload.URL != "" {
			res.URL = payload.URL
			break
		}
	}
	return res
}
