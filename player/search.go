package player

import (
	"strings"

	"github.com/samber/lo"
)

// Filtered returns the playlist indices matching the search query, or
// every index when no query is set. Matching is case-insensitive over
// title, artist and album.
func (p *Player) Filtered() []int {
	indices := lo.Range(len(p.tracks))
	query := strings.ToLower(strings.TrimSpace(p.searchQuery))
	if query == "" {
		return indices
	}
	return lo.Filter(indices, func(i int, _ int) bool {
		t := p.tracks[i]
		return strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Artist), query) ||
			strings.Contains(strings.ToLower(t.Album), query)
	})
}

// MoveSelection moves the cursor within the filtered view, clamped to
// its ends.
func (p *Player) MoveSelection(delta int) {
	visible := p.Filtered()
	if len(visible) == 0 {
		return
	}
	pos := 0
	for i, idx := range visible {
		if idx == p.selected {
			pos = i
			break
		}
	}
	pos = lo.Clamp(pos+delta, 0, len(visible)-1)
	p.selected = visible[pos]
}

func (p *Player) Searching() bool     { return p.searching }
func (p *Player) SearchQuery() string { return p.searchQuery }
func (p *Player) StartSearch()        { p.searching = true }
func (p *Player) StopSearch()         { p.searching = false }

// ClearSearch drops the query and leaves search mode.
func (p *Player) ClearSearch() {
	p.searching = false
	p.searchQuery = ""
}

// SearchInput feeds one typed rune into the query.
func (p *Player) SearchInput(r rune) {
	p.searchQuery += string(r)
	p.clampSelectionToFilter()
}

// SearchBackspace removes the last rune of the query.
func (p *Player) SearchBackspace() {
	if p.searchQuery == "" {
		return
	}
	runes := []rune(p.searchQuery)
	p.searchQuery = string(runes[:len(runes)-1])
	p.clampSelectionToFilter()
}

func (p *Player) clampSelectionToFilter() {
	visible := p.Filtered()
	if len(visible) == 0 {
		return
	}
	if !lo.Contains(visible, p.selected) {
		p.selected = visible[0]
	}
}
