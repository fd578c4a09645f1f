package ingest

import "context"

// Result is one channel item of a paginated sequence: either a page or a
// terminal error. The channel closes after an error or after the sequence
// is exhausted.
type Result[T any] struct {
	Page Page[T]
	Err  error
}

// fetchPage performs one page request and returns the raw item list plus
// the outbound cursor (empty when exhausted).
type fetchPage func(ctx context.Context, cursorIn string) (items []any, cursorOut string, err error)

// runPagination is the shared generator loop backing every paginate* method.
// It is a non-restartable, finite sequence that yields one Result per page
// over ch, blocking on send so the consumer (the collector) can commit to
// the store between pages — the Go analogue of the Python implementation's
// async-generator-with-commit-between-yields discipline (spec §9).
//
// Cancellation: the loop checks ctx between pages, and fetch receives the
// same ctx, so an in-flight request is abandoned and no further page is
// fetched once ctx is done.
func runPagination[T any](ctx context.Context, maxPages int, fetch fetchPage, normalize func([]any) []T) <-chan Result[T] {
	ch := make(chan Result[T])
	go func() {
		defer close(ch)
		cursor := ""
		page := 0
		for {
			select {
			case <-ctx.Done():
				send(ctx, ch, Result[T]{Err: ctx.Err()})
				return
			default:
			}

			rawItems, cursorOut, err := fetch(ctx, cursor)
			if err != nil {
				send(ctx, ch, Result[T]{Err: err})
				return
			}

			items := normalize(rawItems)
			page++
			truncated := maxPages > 0 && page >= maxPages && cursorOut != ""

			if !send(ctx, ch, Result[T]{Page: Page[T]{
				Batch:     items,
				CursorIn:  cursor,
				CursorOut: cursorOut,
				Truncated: truncated,
			}}) {
				return
			}

			if cursorOut == "" || (maxPages > 0 && page >= maxPages) || len(items) == 0 {
				return
			}
			cursor = cursorOut
		}
	}()
	return ch
}

// send delivers v on ch, returning false if ctx was cancelled first.
func send[T any](ctx context.Context, ch chan<- Result[T], v Result[T]) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
