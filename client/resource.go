package client

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
)

// Record is an untyped entity record keyed by remote field name.
type Record map[string]any

// Resource is the CRUD and operation client for one entity collection.
// T is the record type responses decode into; use Record when no typed
// model exists.
//
// Example:
//
//	slips := client.NewResource[client.Record](c, entity)
//	page, err := slips.Search(ctx, query.Where("code", "ABC"), nil)
//
//	err = slips.Invoke(ctx, "ApplyADiscount", client.Args{Path: []any{42, "D10"}}, nil)
type Resource[T any] struct {
	transport Transport
	entity    *Entity
}

// NewResource binds entity to transport.
func NewResource[T any](t Transport, entity *Entity) *Resource[T] {
	return &Resource[T]{transport: t, entity: entity}
}

// Entity returns the resource's entity description.
func (r *Resource[T]) Entity() *Entity {
	return r.entity
}

// GetAll lists one page of records.
func (r *Resource[T]) GetAll(ctx context.Context, opts *query.ListOptions) (*Page[T], error) {
	var page Page[T]
	if err := r.transport.Do(ctx, http.MethodGet, query.AppendTo(r.entity.Path, opts), nil, &page); err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.entity.Name, err)
	}
	if opts != nil {
		if page.Offset == 0 && opts.Offset != nil {
			page.Offset = *opts.Offset
		}
		if page.Limit == 0 && opts.Limit != nil {
			page.Limit = *opts.Limit
		}
	}
	return &page, nil
}

// GetByID fetches one record.
func (r *Resource[T]) GetByID(ctx context.Context, id any, opts *query.ListOptions) (*T, error) {
	path, err := r.entity.ItemPath(id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.transport.Do(ctx, http.MethodGet, query.AppendTo(path, opts), nil, &out); err != nil {
		return nil, fmt.Errorf("getting %s %v: %w", r.entity.Name, id, err)
	}
	return &out, nil
}

// Create posts a new record and returns the stored version.
func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	if body == nil {
		return nil, core.NewValidationError("create requires a body", "", nil)
	}
	var out T
	if err := r.transport.Do(ctx, http.MethodPost, r.entity.Path, body, &out); err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.entity.Name, err)
	}
	return &out, nil
}

// Update replaces a record.
func (r *Resource[T]) Update(ctx context.Context, id any, body any) (*T, error) {
	return r.write(ctx, http.MethodPut, "updating", id, body)
}

// Patch updates the given fields of a record.
func (r *Resource[T]) Patch(ctx context.Context, id any, body any) (*T, error) {
	return r.write(ctx, http.MethodPatch, "patching", id, body)
}

func (r *Resource[T]) write(ctx context.Context, method, verb string, id any, body any) (*T, error) {
	if body == nil {
		return nil, core.NewValidationError(verb+" requires a body", "", nil)
	}
	path, err := r.entity.ItemPath(id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.transport.Do(ctx, method, path, body, &out); err != nil {
		return nil, fmt.Errorf("%s %s %v: %w", verb, r.entity.Name, id, err)
	}
	return &out, nil
}

// Delete removes a record.
func (r *Resource[T]) Delete(ctx context.Context, id any) error {
	path, err := r.entity.ItemPath(id)
	if err != nil {
		return err
	}
	if err := r.transport.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("deleting %s %v: %w", r.entity.Name, id, err)
	}
	return nil
}

// Search lists records matching criteria. Criteria that compile to nothing
// list without a filter.
func (r *Resource[T]) Search(ctx context.Context, c query.Criteria, opts *query.ListOptions) (*Page[T], error) {
	merged := query.Search(c, r.entity.Fields, deref(opts))
	return r.GetAll(ctx, &merged)
}

// SearchLike is Search with every string value turned into a prefix match.
func (r *Resource[T]) SearchLike(ctx context.Context, c query.Criteria, opts *query.ListOptions) (*Page[T], error) {
	return r.Search(ctx, query.LikePrefix(c), opts)
}

// Query lists records matching all of the given filter expressions.
func (r *Resource[T]) Query(ctx context.Context, exprs []string, opts *query.ListOptions) (*Page[T], error) {
	merged := deref(opts).WithQuery(query.Join(exprs...))
	return r.GetAll(ctx, &merged)
}

// All iterates over every record, paging with opts.Limit as the page size.
func (r *Resource[T]) All(ctx context.Context, opts *query.ListOptions) iter.Seq2[T, error] {
	base := deref(opts)
	start, size := 0, 0
	if base.Offset != nil {
		start = *base.Offset
	}
	if base.Limit != nil {
		size = *base.Limit
	}
	return Paginate(ctx, start, size, func(ctx context.Context, offset int) (*Page[T], error) {
		o := base
		o.Offset = query.Int(offset)
		return r.GetAll(ctx, &o)
	})
}

// Invoke calls a named operation from the entity's table and decodes the
// response into out, which may be nil.
func (r *Resource[T]) Invoke(ctx context.Context, name string, args Args, out any) error {
	op, err := r.entity.Operation(name)
	if err != nil {
		return err
	}
	return Call(ctx, r.transport, op, args, out)
}

// Call sends one operation through t.
func Call(ctx context.Context, t Transport, op Operation, args Args, out any) error {
	switch {
	case op.Body == BodyNone && args.Body != nil:
		return core.NewValidationError(fmt.Sprintf("%s %s takes no body", op.Verb.Method(), op.Path), "", nil)
	case op.Body == BodyJSON && args.Body == nil:
		return core.NewValidationError(fmt.Sprintf("%s %s requires a body", op.Verb.Method(), op.Path), "", nil)
	}

	path, err := op.Expand(args)
	if err != nil {
		return err
	}
	if err := t.Do(ctx, op.Verb.Method(), path, args.Body, out); err != nil {
		return fmt.Errorf("%s %s: %w", op.Verb.Method(), path, err)
	}
	return nil
}

func deref(opts *query.ListOptions) query.ListOptions {
	if opts == nil {
		return query.ListOptions{}
	}
	return *opts
}
