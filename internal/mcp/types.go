package mcp

// SearchVersesInput is the input schema for the search_verses tool.
type SearchVersesInput struct {
	Query   string   `json:"query" jsonschema:"the verse search query; supports /pattern/flags regex and * ? wildcards"`
	Works   []int64  `json:"works,omitempty" jsonschema:"restrict to these work ids"`
	Scopes  []string `json:"scopes,omitempty" jsonschema:"restrict matching to fields: source, translit, translation, gloss"`
	Page    int      `json:"page,omitempty" jsonschema:"1-based result page, default 1"`
	PerPage int      `json:"per_page,omitempty" jsonschema:"results per page: 25, 50, or 100"`
}

// VerseOutput is one verse in tool output.
type VerseOutput struct {
	WorkTitle   string   `json:"work_title"`
	Citation    string   `json:"citation"`
	Locator     string   `json:"locator"`
	Snippet     string   `json:"snippet"`
	Scope       string   `json:"scope"`
	Matched     []string `json:"matched_scopes"`
	Source      string   `json:"source,omitempty"`
	Translit    string   `json:"translit,omitempty"`
	Translation string   `json:"translation,omitempty"`
}

// SearchVersesOutput is the output schema for the search_verses tool.
type SearchVersesOutput struct {
	Total     int           `json:"total"`
	Page      int           `json:"page"`
	PageCount int           `json:"page_count"`
	Results   []VerseOutput `json:"results"`
}

// SemanticSearchInput is the input schema for the semantic_search tool.
type SemanticSearchInput struct {
	Query string `json:"query" jsonschema:"natural language query"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum passages to return, default 10"`
}

// PassageOutput is one scored passage in semantic output.
type PassageOutput struct {
	PassageID int64   `json:"passage_id"`
	WorkID    int64   `json:"work_id"`
	Chapter   int     `json:"chapter"`
	Verses    string  `json:"verses"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

// SemanticSearchOutput is the output schema for the semantic_search tool.
type SemanticSearchOutput struct {
	Results []PassageOutput `json:"results"`
}

// PackStatusInput is the input schema for the pack_status tool.
type PackStatusInput struct{}

// PackStatusOutput is the output schema for the pack_status tool.
type PackStatusOutput struct {
	State      string `json:"state"`
	Version    string `json:"version,omitempty"`
	Files      int    `json:"files"`
	TotalBytes int64  `json:"total_bytes"`
	Enabled    bool   `json:"enabled"`
	DiskTotal  uint64 `json:"disk_total_bytes,omitempty"`
	DiskFree   uint64 `json:"disk_free_bytes,omitempty"`
	Encoder    string `json:"encoder,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
}
