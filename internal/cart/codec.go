package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeItems serializes line items into the durable record format.
func EncodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart record: %w", err)
	}
	return data, nil
}

// DecodeItems parses a durable record. Missing variant fields get their defaults,
// quantities are kept within 1..MaxQuantity and duplicate keys are merged in
// first-seen order.
func DecodeItems(data []byte) ([]LineItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []LineItem{}, nil
	}

	var raw []LineItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cart record: %w", err)
	}

	items := make([]LineItem, 0, len(raw))
	for _, item := range raw {
		key := NewKey(item.ProductID, item.Size, item.Color)
		item.Size, item.Color = key.Size, key.Color
		item.Quantity = clampQuantity(item.Quantity)
		if item.Images == nil {
			item.Images = []string{}
		}

		if i := indexOf(items, key); i >= 0 {
			items[i].Quantity = min(MaxQuantity, items[i].Quantity+item.Quantity)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
