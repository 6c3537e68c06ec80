package domain

// Request kinds carried in the envelope's "type" field.
const (
	KindPing            = "ping"
	KindCheckCollection = "check_collection"
	KindAgent           = "agent"
	KindCodebase        = "codebase"
	KindDoc             = "doc"
)

// Chat kinds carried in the envelope's "chat_type" field.
const (
	ChatInit    = "init_chat"
	ChatMessage = "chat_message"
)

// Document kind hints accepted on the generic document path. The "type"
// field doubles as the document kind there, so these values are valid
// request types as well.
var DocKinds = map[string]bool{
	KindDoc:   true,
	"webpage": true,
	"pdf":     true,
	"txt":     true,
	"csv":     true,
	"docx":    true,
	"md":      true,
}

// Request is the incoming envelope. Exactly one dispatch row applies to
// any request; the discriminant is Type, or ChatType when Type does not
// name a dedicated kind.
type Request struct {
	Type     string `json:"type,omitempty"`
	ChatType string `json:"chat_type,omitempty"`

	Path string   `json:"path,omitempty"`
	URL  string   `json:"url,omitempty"`
	URLs []string `json:"urls,omitempty"`

	Query   string `json:"query,omitempty"`
	Message string `json:"message,omitempty"`

	SessionID string `json:"session_id,omitempty"`

	// DocType is an optional document kind hint (webpage|pdf|txt|csv|docx|md).
	// When absent, Type is consulted, then "doc" is assumed.
	DocType string `json:"doc_type,omitempty"`

	// ParsedCodebase carries pre-extracted code entities for the
	// codebase kind. No crawling or parsing happens server-side.
	ParsedCodebase []CodeEntity `json:"parsedCodebase,omitempty"`
}

// DocKind resolves the effective document kind for the generic path.
func (r Request) DocKind() string {
	if r.DocType != "" {
		return r.DocType
	}
	if r.Type != "" {
		return r.Type
	}
	return KindDoc
}

// Source resolves the document source identifier, accepting either
// "path" or "url".
func (r Request) Source() string {
	if r.Path != "" {
		return r.Path
	}
	return r.URL
}

// Response is the outgoing envelope. Success is always present; the
// remaining fields are kind-specific.
type Response struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Error   string `json:"error,omitempty"`

	Exists  *bool `json:"exists,omitempty"`
	Results any   `json:"results,omitempty"`

	// Codebase query extras.
	Collection      string  `json:"collection,omitempty"`
	Query           string  `json:"query,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// OK builds a success envelope with no payload.
func OK() Response {
	return Response{Success: true}
}

// Failure builds the uniform failure envelope from an error.
func Failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

// WithResults builds a success envelope carrying results.
func WithResults(results any) Response {
	return Response{Success: true, Results: results}
}

// WithExists builds a success envelope for an existence check.
func WithExists(exists bool) Response {
	return Response{Success: true, Exists: &exists}
}

// CodeHit is one scored result returned from a codebase query.
type CodeHit struct {
	Score       float64 `json:"score"`
	FilePath    string  `json:"file_path"`
	EntityName  string  `json:"entity_name"`
	Code        string  `json:"code"`
	Description string  `json:"description,omitempty"`
}
