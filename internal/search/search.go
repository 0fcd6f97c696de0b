package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultIdea     ResultType = "idea"
	ResultFragment ResultType = "fragment"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type     ResultType `json:"type"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Snippet  string     `json:"snippet"`
	Hospital string     `json:"hospital,omitempty"`
	Category string     `json:"category,omitempty"`
	Quadrant string     `json:"quadrant,omitempty"`
	Status   string     `json:"status"`
}

// Query describes a search request.
type Query struct {
	Text           string
	FilterType     ResultType // empty = all types
	FilterHospital string
	Limit          int
	Offset         int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexIdea(idea IdeaRecord) error
	IndexFragment(fragment FragmentRecord) error
	DeleteFragment(id string) error
}

// IdeaRecord is the data we index for an idea.
type IdeaRecord struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ProblemStatement string `json:"problemStatement"`
	ProposedSolution string `json:"proposedSolution"`
	Category         string `json:"category"`
	Hospital         string `json:"hospital"`
	Track            string `json:"track"`
	Quadrant         string `json:"quadrant"`
	Status           string `json:"status"`
}

// FragmentRecord is the data we index for an idea fragment.
type FragmentRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	RoughThought string `json:"roughThought"`
	Category     string `json:"category"`
	Hospital     string `json:"hospital"`
	Status       string `json:"status"`
}
