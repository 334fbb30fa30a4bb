package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/vmunix/reelvault/internal/contentid"
	"github.com/vmunix/reelvault/pkg/titlematch"
)

// maxSearchResults bounds the options offered for a text search.
const maxSearchResults = 8

// search offers the closest catalogue titles as open tokens.
func (d *Dispatcher) search(ctx context.Context, c *conversation) State {
	query := strings.TrimSpace(c.input)
	if query == "" {
		return d.reply(ctx, c, msgWelcome)
	}

	titles, err := d.catalog.ListTitles()
	if err != nil {
		d.log.Error("list titles failed", "chat_id", c.chatID, "error", err)
		return d.reply(ctx, c, msgFailure)
	}

	candidates := make([]titlematch.Candidate, len(titles))
	for i, t := range titles {
		candidates[i] = titlematch.Candidate{ID: t.ID, Title: t.Title, Year: t.Year}
	}
	matches := titlematch.Search(query, candidates, maxSearchResults)
	if len(matches) == 0 {
		d.notFoundEvent(ctx, c, query)
		return d.reply(ctx, c, fmt.Sprintf(msgNoMatches, query))
	}

	buttons := make([]Button, 0, len(matches))
	for _, m := range matches {
		label := m.Title
		if m.Year > 0 {
			label = fmt.Sprintf("%s (%d)", m.Title, m.Year)
		}
		if b, ok := d.button(label, contentid.OpenToken(m.ID)); ok {
			buttons = append(buttons, b)
		}
	}
	return d.menu(ctx, c, fmt.Sprintf(msgSearchResults, query), buttons)
}
