package scope

import (
	"context"
	"fmt"
)

// Query runs an organization-scoped read through the cache. A scope without
// organization yields an empty result and never reaches load.
func Query[T any](ctx context.Context, c *Cache, sc Scope, resource string, filters []string, load func(context.Context) ([]T, error)) ([]T, error) {
	if !sc.HasOrganization() {
		return []T{}, nil
	}
	key, err := c.Key(ctx, sc.OrganizationID, resource, filters...)
	if err != nil {
		return nil, err
	}
	var out []T
	err = c.Fetch(ctx, resource, key, &out, func(ctx context.Context) (any, error) {
		rows, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", resource, err)
		}
		if rows == nil {
			rows = []T{}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// QueryOne is Query for a single value. ok is false without organization.
func QueryOne[T any](ctx context.Context, c *Cache, sc Scope, resource string, filters []string, load func(context.Context) (T, error)) (value T, ok bool, err error) {
	if !sc.HasOrganization() {
		return value, false, nil
	}
	key, err := c.Key(ctx, sc.OrganizationID, resource, filters...)
	if err != nil {
		return value, false, err
	}
	err = c.Fetch(ctx, resource, key, &value, func(ctx context.Context) (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", resource, err)
		}
		return v, nil
	})
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}
