package lsm

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/time/rate"
)

// Compactor rewrites a list of tables, ordered oldest to newest, into a
// shorter list with the same visible contents.
type Compactor[K cmp.Ordered, V any] interface {
	Compact(ctx context.Context, tables []*SSTable[K, V]) ([]*SSTable[K, V], error)
}

// RowCountCompactor merges runs of adjacent tables while the merged table
// stays within a row limit. Tables already above the limit are left alone.
type RowCountCompactor[K cmp.Ordered, V any] struct {
	limit    int
	newTable func() (*SSTable[K, V], error)
	limiter  *rate.Limiter
}

// NewRowCountCompactor creates a compactor that writes merged tables
// obtained from newTable. perSecond caps the number of records written per
// second; 0 disables throttling.
func NewRowCountCompactor[K cmp.Ordered, V any](
	limit int,
	perSecond int,
	newTable func() (*SSTable[K, V], error),
) *RowCountCompactor[K, V] {
	c := &RowCountCompactor[K, V]{limit: limit, newTable: newTable}
	if perSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
	return c
}

// Compact implements Compactor.
// Intermediate tables of a run are removed as soon as they are superseded;
// the caller removes inputs that are missing from the result. On error every
// table written by this call is removed and the inputs are untouched.
func (c *RowCountCompactor[K, V]) Compact(
	ctx context.Context,
	tables []*SSTable[K, V],
) (_ []*SSTable[K, V], err error) {
	result := make([]*SSTable[K, V], 0, len(tables))
	var merged *SSTable[K, V]
	defer func() {
		if err == nil {
			return
		}
		var errs []error
		for _, t := range append(result, merged) {
			if t != nil && !slices.Contains(tables, t) {
				errs = append(errs, t.Remove())
			}
		}
		if cleanupErr := errors.Join(errs...); cleanupErr != nil {
			err = fmt.Errorf("%w (cleanup: %v)", err, cleanupErr)
		}
	}()

	for i := 0; i < len(tables); i++ {
		table := tables[i]
		if table.Len() > c.limit {
			result = append(result, table)
			continue
		}

		// Nothing is older than the first table, so a run starting there can
		// forget deletions.
		dropTombstones := i == 0
		merged = table
		for i+1 < len(tables) && merged.Len() <= c.limit {
			next, err := c.merge(ctx, merged, tables[i+1], dropTombstones)
			if err != nil {
				return nil, err
			}
			prev := merged
			merged = next
			i++
			if prev != table {
				if err := prev.Remove(); err != nil {
					return nil, fmt.Errorf("remove intermediate table: %w", err)
				}
			}
		}

		if merged != table && merged.Len() == 0 {
			if err := merged.Remove(); err != nil {
				return nil, fmt.Errorf("remove empty table: %w", err)
			}
			continue
		}
		result = append(result, merged)
	}
	return result, nil
}

// merge writes a new table holding older and newer; newer wins on equal keys.
func (c *RowCountCompactor[K, V]) merge(
	ctx context.Context,
	older, newer *SSTable[K, V],
	dropTombstones bool,
) (*SSTable[K, V], error) {
	a, err := older.Records()
	if err != nil {
		return nil, err
	}
	b, err := newer.Records()
	if err != nil {
		return nil, err
	}

	merged := make([]entry[K, V], 0, len(a)+len(b))
	emit := func(e entry[K, V]) error {
		if err := c.wait(ctx); err != nil {
			return err
		}
		if e.deleted && dropTombstones {
			return nil
		}
		merged = append(merged, e)
		return nil
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var next entry[K, V]
		switch {
		case j == len(b):
			next = a[i]
			i++
		case i == len(a):
			next = b[j]
			j++
		default:
			switch cmp.Compare(a[i].key, b[j].key) {
			case -1:
				next = a[i]
				i++
			case 1:
				next = b[j]
				j++
			default:
				next = b[j]
				i++
				j++
			}
		}
		if err := emit(next); err != nil {
			return nil, err
		}
	}

	out, err := c.newTable()
	if err != nil {
		return nil, err
	}
	if err := out.Write(merged); err != nil {
		return nil, errors.Join(fmt.Errorf("write merged table: %w", err), out.Remove())
	}
	return out, nil
}

func (c *RowCountCompactor[K, V]) wait(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	return c.limiter.Wait(ctx)
}
