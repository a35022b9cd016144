package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/weiawesome/wes-chat/internal/audit"
	"github.com/weiawesome/wes-chat/internal/auth"
	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/repository"
	"github.com/weiawesome/wes-chat/pkg/database"
)

// ownerField is never accepted from a client payload.
const ownerField = "owner"

// Patch is a client-supplied partial update keyed by JSON field name.
type Patch map[string]interface{}

// FieldKind is the accepted JSON type of an updatable field.
type FieldKind int

const (
	TextField FieldKind = iota
	TextListField
)

// Field maps an updatable JSON field onto its storage column.
type Field struct {
	Column string
	Kind   FieldKind
}

// SanitizePatch returns a copy of patch without the owner field and
// without any field whose value is the empty string.
func SanitizePatch(patch Patch) Patch {
	out := make(Patch, len(patch))
	for k, v := range patch {
		if k == ownerField {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// Pipeline applies owner-checked updates and deletes to one kind of
// resource.
type Pipeline[T domain.Owned] struct {
	kind   string
	store  repository.OwnedStore[T]
	fields map[string]Field
}

// NewPipeline creates a pipeline. kind names the resource in logs; fields
// lists the JSON fields an update may change.
func NewPipeline[T domain.Owned](kind string, store repository.OwnedStore[T], fields map[string]Field) *Pipeline[T] {
	return &Pipeline[T]{kind: kind, store: store, fields: fields}
}

// Load fetches a resource, mapping a missing record to domain.ErrNotFound.
func (p *Pipeline[T]) Load(ctx context.Context, id string) (T, error) {
	resource, err := p.store.GetByID(ctx, id)
	if err != nil {
		var zero T
		return zero, mapStoreError(err)
	}
	return resource, nil
}

// Update merges patch into the resource identified by id. It returns the
// fields that were written, keyed by JSON name.
func (p *Pipeline[T]) Update(ctx context.Context, principal *domain.Principal, id string, patch Patch) (Patch, error) {
	resource, err := p.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	patch = SanitizePatch(patch)

	if err := p.authorize(ctx, principal, id, resource); err != nil {
		return nil, err
	}

	columns, applied, err := p.merge(patch)
	if err != nil {
		return nil, err
	}

	if err := p.store.Update(ctx, id, columns); err != nil {
		return nil, mapStoreError(err)
	}
	return applied, nil
}

// Delete removes the resource identified by id.
func (p *Pipeline[T]) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	resource, err := p.Load(ctx, id)
	if err != nil {
		return err
	}

	if err := p.authorize(ctx, principal, id, resource); err != nil {
		return err
	}

	if err := p.store.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (p *Pipeline[T]) authorize(ctx context.Context, principal *domain.Principal, id string, resource T) error {
	err := auth.RequireOwnership(principal, resource)
	if errors.Is(err, domain.ErrForbidden) {
		audit.LogResource(ctx, audit.ActionForbidden, principal.ID, id, p.kind+" mutation rejected: not the owner")
	}
	return err
}

func (p *Pipeline[T]) merge(patch Patch) (map[string]interface{}, Patch, error) {
	columns := make(map[string]interface{}, len(patch))
	applied := make(Patch, len(patch))

	for name, value := range patch {
		field, ok := p.fields[name]
		if !ok {
			continue
		}

		var converted interface{}
		switch field.Kind {
		case TextField:
			s, ok := value.(string)
			if !ok {
				return nil, nil, domain.NewValidationError(name, "must be a string")
			}
			converted = s
		case TextListField:
			list, err := toStringList(value)
			if err != nil {
				return nil, nil, domain.NewValidationError(name, err.Error())
			}
			converted = database.StringArray(list)
		}

		columns[field.Column] = converted
		applied[name] = value
	}
	return columns, applied, nil
}

func toStringList(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must contain only strings")
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a list of strings")
	}
}

// mapStoreError translates repository sentinels into the domain taxonomy.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return domain.NewValidationError("", "conflicts with an existing record")
	default:
		return err
	}
}
