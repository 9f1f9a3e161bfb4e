package resource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const apiPrefix = "/v1/"

// EntityPointer constrains PT to *T implementing Entity.
type EntityPointer[T any] interface {
	*T
	Entity
}

// Service exposes the conventional REST surface of one collection:
//
//	GET    /v1/<collection>
//	POST   /v1/<collection>
//	GET    /v1/<collection>/<id>
//	POST   /v1/<collection>/<id>
//	DELETE /v1/<collection>/<id>
//	POST   /v1/<collection>/<id>/<action>
//
// Each method performs exactly one call to the backend.
type Service[T any, PT EntityPointer[T]] struct {
	backend    *Backend
	collection string
}

// NewService binds a collection name to a backend.
func NewService[T any, PT EntityPointer[T]](b *Backend, collection string) *Service[T, PT] {
	return &Service[T, PT]{
		backend:    b,
		collection: strings.Trim(collection, "/"),
	}
}

// Backend returns the backend the service calls through.
func (s *Service[T, PT]) Backend() *Backend { return s.backend }

// Path builds /v1/<collection>[/<part>...], escaping each part.
func (s *Service[T, PT]) Path(parts ...string) string {
	var sb strings.Builder
	sb.WriteString(apiPrefix)
	sb.WriteString(s.collection)
	for _, p := range parts {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(p))
	}
	return sb.String()
}

// List fetches one page of the collection.
func (s *Service[T, PT]) List(ctx context.Context, params Params) (*Page[T], error) {
	return ListPage[T](ctx, s.backend, s.Path(), params)
}

// Retrieve fetches a single entity by id.
func (s *Service[T, PT]) Retrieve(ctx context.Context, id string, params Params) (*T, error) {
	if err := RequireID(s.collection, id); err != nil {
		return nil, err
	}
	return s.fetch(ctx, http.MethodGet, s.Path(id), params)
}

// Create posts params to the collection.
func (s *Service[T, PT]) Create(ctx context.Context, params Params) (*T, error) {
	return s.fetch(ctx, http.MethodPost, s.Path(), params)
}

// Update posts params to the entity without loading it first.
func (s *Service[T, PT]) Update(ctx context.Context, id string, params Params) (*T, error) {
	if err := RequireID(s.collection, id); err != nil {
		return nil, err
	}
	return s.fetch(ctx, http.MethodPost, s.Path(id), params)
}

// Get fetches a class-level sub-resource such as /v1/<collection>/upcoming.
func (s *Service[T, PT]) Get(ctx context.Context, subpath string, params Params) (*T, error) {
	return s.fetch(ctx, http.MethodGet, s.Path(subpath), params)
}

// Save posts the fields of entity changed since its last load and refreshes
// it from the response. The request is sent even when nothing changed.
// Not safe for concurrent use on the same entity.
func (s *Service[T, PT]) Save(ctx context.Context, entity PT) error {
	if entity == nil {
		return newInvalidRequest("cannot save a nil " + s.collection + " entity")
	}
	if err := RequireID(s.collection, entity.GetID()); err != nil {
		return err
	}
	params, err := Changes(entity)
	if err != nil {
		return err
	}
	return s.refresh(ctx, entity, http.MethodPost, s.Path(entity.GetID()), params)
}

// Delete deletes the entity and refreshes it from the response.
func (s *Service[T, PT]) Delete(ctx context.Context, entity PT, params Params) error {
	if entity == nil {
		return newInvalidRequest("cannot delete a nil " + s.collection + " entity")
	}
	if err := RequireID(s.collection, entity.GetID()); err != nil {
		return err
	}
	return s.refresh(ctx, entity, http.MethodDelete, s.Path(entity.GetID()), params)
}

// Action posts to /v1/<collection>/<id>/<action> and refreshes entity.
func (s *Service[T, PT]) Action(ctx context.Context, entity PT, action string, params Params) error {
	if entity == nil {
		return newInvalidRequest(fmt.Sprintf("cannot %s a nil %s entity", action, s.collection))
	}
	if err := RequireID(s.collection, entity.GetID()); err != nil {
		return err
	}
	return s.refresh(ctx, entity, http.MethodPost, s.Path(entity.GetID(), action), params)
}

func (s *Service[T, PT]) fetch(ctx context.Context, method, path string, params Params) (*T, error) {
	out := new(T)
	if err := s.backend.Call(ctx, method, path, params, PT(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// refresh overwrites entity wholesale with the response; on failure entity is untouched.
func (s *Service[T, PT]) refresh(ctx context.Context, entity PT, method, path string, params Params) error {
	fresh, err := s.fetch(ctx, method, path, params)
	if err != nil {
		return err
	}
	*entity = *fresh
	return nil
}

// RequireID rejects an empty id before any network call.
func RequireID(collection, id string) error {
	if strings.TrimSpace(id) == "" {
		return newInvalidRequest(fmt.Sprintf("%s id is required", collection))
	}
	return nil
}
