package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fragmede/livethread/internal/domain"
)

// Menu item types with built-in behavior. Any other type is a thread
// search.
const (
	TypeURLInput = "url_input"
	TypeRecent   = "recent"
)

type Menu struct {
	Items []MenuItem `json:"menu_items"`
}

type MenuItem struct {
	Title               string        `json:"title"`
	Type                string        `json:"type"`
	Subreddit           string        `json:"subreddit"`
	Flair               StringOrSlice `json:"flair"`
	MaxAgeHours         int           `json:"max_age_hours"`
	Limit               int           `json:"limit"`
	TitleMustContain    []string      `json:"title_must_contain"`
	TitleMustNotContain []string      `json:"title_must_not_contain"`
	Description         string        `json:"description"`
}

// IsSearch reports whether selecting the item runs a thread search.
func (m MenuItem) IsSearch() bool {
	return m.Type != TypeURLInput && m.Type != TypeRecent
}

// Query converts a search item to a thread query.
func (m MenuItem) Query() domain.ThreadQuery {
	return domain.ThreadQuery{
		Category:            m.Title,
		Subreddit:           m.Subreddit,
		Flairs:              []string(m.Flair),
		MaxAgeHours:         m.MaxAgeHours,
		Limit:               m.Limit,
		TitleMustContain:    m.TitleMustContain,
		TitleMustNotContain: m.TitleMustNotContain,
	}
}

// StringOrSlice accepts either a JSON string or an array of strings.
type StringOrSlice []string

func (s *StringOrSlice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("flair must be a string or a list of strings: %w", err)
	}
	if one == "" {
		*s = nil
		return nil
	}
	*s = StringOrSlice{one}
	return nil
}

// DefaultMenu is used when no menu file exists.
func DefaultMenu() Menu {
	return Menu{Items: []MenuItem{
		{
			Title:               "Soccer match threads",
			Type:                "soccer",
			Subreddit:           "soccer",
			Flair:               StringOrSlice{"Match Thread"},
			MaxAgeHours:         24,
			Limit:               10,
			TitleMustContain:    []string{"match thread"},
			TitleMustNotContain: []string{"pre match", "post match"},
			Description:         "Live match threads from r/soccer",
		},
		{
			Title:       "NBA game threads",
			Type:        "nba",
			Subreddit:   "nba",
			Flair:       StringOrSlice{"Game Thread"},
			MaxAgeHours: 24,
			Limit:       10,
			Description: "Live game threads from r/nba",
		},
		{
			Title:       "Formula 1 race threads",
			Type:        "formula1",
			Subreddit:   "formula1",
			Flair:       StringOrSlice{"Race", "Live Thread"},
			MaxAgeHours: 72,
			Limit:       10,
			Description: "Race and session threads from r/formula1",
		},
		{Title: "Recent threads", Type: TypeRecent, Description: "Threads you opened recently"},
		{Title: "Enter URL", Type: TypeURLInput, Description: "Open a thread by its URL"},
	}}
}

// LoadMenu reads the menu file at path. A missing file yields
// DefaultMenu; a malformed one is an error.
func LoadMenu(path string) (Menu, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultMenu(), nil
	}
	if err != nil {
		return Menu{}, fmt.Errorf("reading menu: %w", err)
	}

	var m Menu
	if err := json.Unmarshal(data, &m); err != nil {
		return Menu{}, fmt.Errorf("parsing menu %s: %w", path, err)
	}
	for i, item := range m.Items {
		if item.Title == "" {
			return Menu{}, fmt.Errorf("parsing menu %s: item %d has no title", path, i)
		}
		if item.IsSearch() && item.Subreddit == "" {
			return Menu{}, fmt.Errorf("parsing menu %s: item %q has no subreddit", path, item.Title)
		}
	}
	if len(m.Items) == 0 {
		return DefaultMenu(), nil
	}
	return m, nil
}
