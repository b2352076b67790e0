package workflow

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"
)

// Ledger step names, appended in this order over one successful run. The
// middle three are narrative markers for the remote workflow's internal
// stages; they are recorded once the blocking call returns successfully.
const (
	StepDeclarationSubmitted = "declaration submitted"
	StepWorkflowStarted      = "workflow started"
	StepAIAnalysis           = "AI content analysis"
	StepInfoGeneration       = "project information generation"
	StepDatabaseStorage      = "database storage"
	StepDocumentGenerated    = "document generated"
)

const (
	StepStatusSuccess = "success"
	StepStatusFailed  = "failed"
)

const timestampLayout = "2006-01-02 15:04:05"

// Step is one named, timestamped audit entry on a declaration's progress.
type Step struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Ledger is the progress blob embedded in Declaration.WorkflowResult. Steps
// are append-only; FileURL/FileFormat are set once the remote workflow has
// produced a downloadable artifact.
type Ledger struct {
	Steps      []Step `json:"steps"`
	FileURL    string `json:"fileUrl,omitempty"`
	FileFormat string `json:"fileFormat,omitempty"`
}

// LoadLedger decodes a workflow-result blob. Missing or invalid data yields an
// empty ledger; a corrupt blob must never abort a run.
func LoadLedger(blob datatypes.JSON) Ledger {
	if len(blob) == 0 {
		return Ledger{}
	}
	var ledger Ledger
	if err := json.Unmarshal(blob, &ledger); err != nil {
		log.Printf("Ledger: invalid workflow result blob, starting empty: %v", err)
		return Ledger{}
	}
	return ledger
}

// Append returns a ledger with one more step, stamped with the current
// wall-clock time. The receiver is not mutated.
func (l Ledger) Append(name, status string) Ledger {
	steps := make([]Step, len(l.Steps), len(l.Steps)+1)
	copy(steps, l.Steps)
	l.Steps = append(steps, Step{
		Name:      name,
		Status:    status,
		Timestamp: time.Now().Format(timestampLayout),
	})
	return l
}

// WithArtifact sets the generated file's URL and format. Last write wins.
func (l Ledger) WithArtifact(url, format string) Ledger {
	l.FileURL = url
	l.FileFormat = format
	return l
}

func (l Ledger) Encode() (datatypes.JSON, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
