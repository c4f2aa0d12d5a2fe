package qualtrics

import (
	"context"
	"iter"
	"net/http"
)

// Paginator walks a cursor-paginated listing. Each call to All or Collect
// starts again from the first page.
type Paginator[T any] struct {
	client *Client
	start  string
	auth   authStyle
}

func newPaginator[T any](c *Client, start string, auth authStyle) *Paginator[T] {
	return &Paginator[T]{client: c, start: start, auth: auth}
}

// All yields every element in server order. Iteration stops at the first
// error, which is yielded with a zero element. A failure after at least one
// page was read is reported as a *PartialResultError.
func (p *Paginator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		visited := make(map[string]struct{})
		pages, fetched := 0, 0
		next := p.start

		fail := func(err error) {
			if pages > 0 {
				err = &PartialResultError{Fetched: fetched, Pages: pages, Err: err}
			}
			yield(zero, err)
		}

		for next != "" {
			if _, seen := visited[next]; seen {
				fail(&ProtocolError{Method: http.MethodGet, URL: next, Reason: "pagination cursor revisits a page"})
				return
			}
			visited[next] = struct{}{}

			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}

			req := p.client.newRequest(http.MethodGet, next, p.auth, nil)
			env, err := p.client.call(ctx, req)
			if err != nil {
				fail(err)
				return
			}

			page, err := decodeResult[listPage[T]](env)
			if err == nil && page.Elements == nil {
				err = &ProtocolError{Reason: "list result has no elements"}
			}
			if err != nil {
				if perr, ok := err.(*ProtocolError); ok {
					perr.Method = http.MethodGet
					perr.URL = next
				}
				fail(err)
				return
			}
			pages++

			p.client.logger.Debug().
				Int("page", pages).
				Int("count", len(*page.Elements)).
				Int("total", fetched+len(*page.Elements)).
				Msg("Retrieved page from Qualtrics")

			for _, el := range *page.Elements {
				fetched++
				if !yield(el, nil) {
					return
				}
			}

			next = ""
			if page.NextPage != nil {
				next = *page.NextPage
			} else if env.NextPage != nil {
				next = *env.NextPage
			}
		}
	}
}

// Collect gathers all elements. On failure it returns the elements read so
// far together with the error.
func (p *Paginator[T]) Collect(ctx context.Context) ([]T, error) {
	items := []T{}
	for item, err := range p.All(ctx) {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}
