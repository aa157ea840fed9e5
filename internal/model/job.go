package model // import "github.com/Xunop/e-editor/internal/model"

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const JobTypeImport = "import"

// Job is an asynchronous import of an epub file into the library.
type Job struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Type   string `json:"type"`
	Status string `json:"status"`
	// Filled in once the job is done.
	BookID       int64    `json:"bookId,omitempty"`
	FirstChapter *Chapter `json:"firstChapter,omitempty"`
	Error        string   `json:"error,omitempty"`
	// RemoveAfter deletes Path once the job has finished.
	RemoveAfter bool `json:"-"`
}
