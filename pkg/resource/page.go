package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Page is a single list response. Data keeps the server's order.
type Page[T any] struct {
	Object  string `json:"object"`
	URL     string `json:"url"`
	HasMore bool   `json:"has_more"`
	Data    []*T   `json:"data"`
}

// First returns the first element or nil.
func (p *Page[T]) First() *T {
	if p == nil || len(p.Data) == 0 {
		return nil
	}
	return p.Data[0]
}

// Len returns the number of elements on the page.
func (p *Page[T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// UnmarshalJSON decodes each element through Decode when T is an entity so
// snapshots and extra fields are populated.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Object  string            `json:"object"`
		URL     string            `json:"url"`
		HasMore bool              `json:"has_more"`
		Data    []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	items := make([]*T, 0, len(raw.Data))
	for i, item := range raw.Data {
		elem := new(T)
		if e, ok := any(elem).(Entity); ok {
			if err := Decode(item, e); err != nil {
				return fmt.Errorf("data[%d]: %w", i, err)
			}
		} else if err := json.Unmarshal(item, elem); err != nil {
			return fmt.Errorf("data[%d]: %w", i, err)
		}
		items = append(items, elem)
	}

	p.Object = raw.Object
	p.URL = raw.URL
	p.HasMore = raw.HasMore
	p.Data = items
	return nil
}

// ListPage fetches one page of L from path.
func ListPage[L any](ctx context.Context, b *Backend, path string, params Params) (*Page[L], error) {
	page := &Page[L]{}
	if err := b.Call(ctx, http.MethodGet, path, params, page); err != nil {
		return nil, err
	}
	return page, nil
}
