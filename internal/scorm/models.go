package scorm

// Version is the detected SCORM generation of a package.
type Version string

const (
	Version12      Version = "SCORM-1.2"
	Version2004    Version = "SCORM-2004"
	VersionUnknown Version = "Unknown"
)

// Strategy names the convention under which an assessment was found.
type Strategy string

const (
	StrategyInterchangeXML Strategy = "interchange-xml"
	StrategyHTML           Strategy = "html-heuristic"
	StrategyScript         Strategy = "script-heuristic"
	StrategyManifest       Strategy = "manifest-interaction"
)

// QuestionKind is the normalized question type across all strategies.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindMultipleSelect QuestionKind = "multiple-select"
	KindTrueFalse      QuestionKind = "true-false"
	KindTextInput      QuestionKind = "text-input"
	KindMatching       QuestionKind = "matching"
	KindFillInBlank    QuestionKind = "fill-in-blank"
	KindEssay          QuestionKind = "essay"
	KindUnknown        QuestionKind = "unknown"
)

// PackageAnalysis is the full normalized description of one package.
// Immutable after Analyze returns it.
type PackageAnalysis struct {
	Format      string           `json:"format"` // always "SCORM"
	Version     Version          `json:"version"`
	Title       string           `json:"title"`
	Metadata    Metadata         `json:"metadata"`
	Structure   []StructureNode  `json:"structure"`
	Resources   []Resource       `json:"resources"`
	Content     ContentInventory `json:"content_files"`
	Assessments []Assessment     `json:"assessments"`
	EntryPoints []string         `json:"entry_points"`
	Warnings    []string         `json:"warnings,omitempty"`
}

type Metadata struct {
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}

// StructureNode mirrors one manifest item, in document order.
type StructureNode struct {
	Identifier    string          `json:"identifier"`
	IdentifierRef string          `json:"identifier_ref,omitempty"`
	Title         string          `json:"title"`
	Depth         int             `json:"depth"`
	Children      []StructureNode `json:"children,omitempty"`
}

// Resource is one manifest-declared file bundle.
type Resource struct {
	Identifier string   `json:"identifier"`
	Type       string   `json:"type"`
	Href       string   `json:"href"`
	Files      []string `json:"files,omitempty"`
}

// ContentInventory partitions archive entries by content category.
// Text-like categories hold paths only; video and audio are materialized.
type ContentInventory struct {
	HTML       []string    `json:"html"`
	Video      []MediaFile `json:"video"`
	Audio      []MediaFile `json:"audio"`
	Images     []string    `json:"images"`
	JavaScript []string    `json:"javascript"`
	CSS        []string    `json:"css"`
	Other      []string    `json:"other"`
}

// MediaFile owns its binary payload once materialized; the payload lives
// as long as the PackageAnalysis that holds it.
type MediaFile struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

type Assessment struct {
	SourceFile    string     `json:"source_file"`
	Strategy      Strategy   `json:"extraction_strategy"`
	QuestionCount int        `json:"question_count"`
	Questions     []Question `json:"questions"`
}

type Question struct {
	ID            string            `json:"id"`
	Kind          QuestionKind      `json:"kind"`
	Text          string            `json:"text"`
	Options       []string          `json:"options,omitempty"`
	CorrectAnswer interface{}       `json:"correct_answer,omitempty"` // string or []string, strategy-dependent
	Points        float64           `json:"points,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// RepairResult summarizes a validation/repair pass. Issues holds only
// unresolved defects; anything the repairer fixed is described in Fixes.
type RepairResult struct {
	Success         bool     `json:"success"`
	RepairedArchive []byte   `json:"-"`
	Issues          []string `json:"issues"`
	Fixes           []string `json:"fixes"`
	Warnings        []string `json:"warnings"`
}
