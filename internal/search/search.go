package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultTask       ResultType = "task"
	ResultSubmission ResultType = "submission"
	ResultComment    ResultType = "comment"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	PetID   string     `json:"petId"`
	TaskID  string     `json:"taskId,omitempty"`
}

// Query describes a search request. PetIDs is the set of pets the
// caller is allowed to see; results outside it are never returned.
type Query struct {
	Text        string
	FilterType  ResultType // empty = all types
	FilterPetID string
	PetIDs      []string
	Limit       int
	Offset      int
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
	IndexTask(t TaskRecord) error
	IndexSubmission(s SubmissionRecord) error
	IndexComment(c CommentRecord) error
	DeleteTask(id string) error
}

// TaskRecord is the data we index for a task.
type TaskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PetID       string `json:"petId"`
}

// SubmissionRecord is the data we index for a homework submission.
type SubmissionRecord struct {
	ID        string `json:"id"`
	Note      string `json:"note"`
	TaskID    string `json:"taskId"`
	TaskTitle string `json:"taskTitle"`
	PetID     string `json:"petId"`
}

// CommentRecord is the data we index for a trainer comment.
type CommentRecord struct {
	ID           string `json:"id"`
	Body         string `json:"body"`
	SubmissionID string `json:"submissionId"`
	TaskID       string `json:"taskId"`
	PetID        string `json:"petId"`
}
