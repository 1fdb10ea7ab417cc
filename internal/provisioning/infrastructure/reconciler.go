package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/imamik/talhybrid/internal/provisioning"
)

// Reconcile errors. Nothing is retried and nothing already created is
// rolled back.
var (
	ErrResourceLookupFailure      = errors.New("resource lookup failed")
	ErrResourceCreateFailure      = errors.New("resource creation failed")
	ErrDuplicateResourceAmbiguity = errors.New("more matching resources than desired")
	ErrMissingDependency          = errors.New("missing dependency")
)

// Record is the reconciler's view of one cloud resource.
type Record struct {
	ID   int64
	Name string
	// Value is what gets persisted to the descriptor: an ID or an address.
	Value any
}

// Resource adapts one resource kind to the reconciler.
type Resource[T any] interface {
	// Kind names the resource in logs and metrics.
	Kind() string
	// Selector describes how matches are found.
	Selector() string
	// Desired is the number of resources that should exist.
	Desired() int
	List(ctx context.Context) ([]T, error)
	// Create creates the index-th resource, counting from 1.
	Create(ctx context.Context, index int) (T, error)
	Describe(item T) Record
	// Field is the descriptor key receiving the first record's Value.
	Field() string
}

// Attacher is implemented by resources that need follow-up wiring after
// creation. Attach is never called for resources that already existed.
type Attacher[T any] interface {
	Attach(ctx context.Context, item T) error
}

// Result reports what a reconcile run did.
type Result[T any] struct {
	Items   []T
	Records []Record
	Created int
}

// Primary returns the record whose value was persisted.
func (r *Result[T]) Primary() Record {
	return r.Records[0]
}

// Reconcile converges one resource kind:
//
//	Absent -> Queried -> Found | Created -> Attached -> Persisted
//
// Found resources are reused as they are. Missing ones are created and
// attached one at a time. More matches than desired is an error.
func Reconcile[T any](ctx *provisioning.Context, r Resource[T]) (*Result[T], error) {
	kind := r.Kind()
	phase := kind

	items, err := r.List(ctx)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, kind, r.Selector(), err)
		ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFailed)
		return nil, failure(ErrResourceLookupFailure, fmt.Sprintf("%s (%s)", kind, r.Selector()), err)
	}

	desired := r.Desired()
	if desired < 1 {
		desired = 1
	}

	if len(items) > desired {
		ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFailed)
		return nil, fmt.Errorf("%w: %d %s resources match %s, want %d (ids %s)",
			ErrDuplicateResourceAmbiguity, len(items), kind, r.Selector(), desired, describeIDs(r, items))
	}

	res := &Result[T]{}
	for _, item := range items {
		rec := r.Describe(item)
		provisioning.LogResourceExists(ctx.Observer, phase, kind, rec.Name, strconv.FormatInt(rec.ID, 10))
		ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFound)
		res.Items = append(res.Items, item)
	}

	attacher, canAttach := r.(Attacher[T])
	for i := len(items) + 1; i <= desired; i++ {
		provisioning.LogResourceCreating(ctx.Observer, phase, kind, fmt.Sprintf("#%d", i))

		item, err := r.Create(ctx, i)
		if err != nil {
			provisioning.LogResourceFailed(ctx.Observer, phase, kind, fmt.Sprintf("#%d", i), err)
			ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFailed)
			return nil, failure(ErrResourceCreateFailure, fmt.Sprintf("%s #%d", kind, i), err)
		}
		rec := r.Describe(item)

		if canAttach {
			if err := attacher.Attach(ctx, item); err != nil {
				provisioning.LogResourceFailed(ctx.Observer, phase, kind, rec.Name, err)
				ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeFailed)
				return nil, failure(ErrResourceCreateFailure,
					fmt.Sprintf("%s %s (id %d) created but not attached", kind, rec.Name, rec.ID), err)
			}
		}

		provisioning.LogResourceCreated(ctx.Observer, phase, kind, rec.Name, strconv.FormatInt(rec.ID, 10))
		ctx.Metrics.RecordReconcile(kind, provisioning.OutcomeCreated)
		res.Items = append(res.Items, item)
		res.Created++
	}

	sort.SliceStable(res.Items, func(a, b int) bool {
		return r.Describe(res.Items[a]).ID < r.Describe(res.Items[b]).ID
	})
	for _, item := range res.Items {
		res.Records = append(res.Records, r.Describe(item))
	}

	if err := persist(ctx, phase, r.Field(), res.Primary()); err != nil {
		return nil, err
	}
	return res, nil
}

func persist(ctx *provisioning.Context, phase, field string, rec Record) error {
	if field == "" {
		return nil
	}
	if rec.Value == nil || rec.Value == "" {
		ctx.Observer.Warnf("%s %s has no value for %s, descriptor left unchanged", phase, rec.Name, field)
		return nil
	}
	if err := ctx.Store.Set(field, rec.Value); err != nil {
		return fmt.Errorf("failed to persist %s: %w", field, err)
	}
	provisioning.LogResourcePersisted(ctx.Observer, phase, field, fmt.Sprint(rec.Value))
	return nil
}

func describeIDs[T any](r Resource[T], items []T) string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, strconv.FormatInt(r.Describe(item).ID, 10))
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}
