package session

import (
	"errors"

	"github.com/Lllllllleong/examsolver/internal/models"
	"github.com/Lllllllleong/examsolver/internal/services"
)

// ErrBusy is returned while a generation request for the session is in flight.
var ErrBusy = errors.New("a solution is already being generated")

const (
	labelIdle     = "Get Solutions"
	labelInFlight = "Analyzing & Solving..."
)

// State is one session's data. Actions never modify a State in place; each
// returns the next one.
type State struct {
	Document   *models.UploadedDocument
	Credential string
	Loading    bool
	Result     string
}

// SelectDocument replaces the selected file. Anything not declared as a PDF is
// rejected and the state is returned unchanged.
func (s State) SelectDocument(doc *models.UploadedDocument) (State, error) {
	if doc == nil {
		return s, services.ErrMissingDocument
	}
	if err := services.ValidateMediaType(doc.MediaType); err != nil {
		return s, err
	}
	s.Document = doc
	return s, nil
}

func (s State) WithCredential(credential string) State {
	s.Credential = credential
	return s
}

// BeginGeneration checks the inputs, clears any previous answer and raises the
// loading flag.
func (s State) BeginGeneration() (State, error) {
	if s.Loading {
		return s, ErrBusy
	}
	if err := services.CheckInputs(s.Document, s.Credential); err != nil {
		return s, err
	}
	s.Loading = true
	s.Result = ""
	return s, nil
}

func (s State) CompleteGeneration(text string) State {
	s.Result = text
	return s
}

// EndGeneration lowers the loading flag whatever the outcome.
func (s State) EndGeneration() State {
	s.Loading = false
	return s
}

func (s State) CanGenerate() bool { return s.Document != nil && !s.Loading }

func (s State) CanDownload() bool { return s.Result != "" }

func (s State) GenerateLabel() string {
	if s.Loading {
		return labelInFlight
	}
	return labelIdle
}

// View projects the state for the page. The credential itself is never echoed.
func (s State) View(id string) models.SessionView {
	v := models.SessionView{
		SessionID:     id,
		HasDocument:   s.Document != nil,
		HasCredential: s.Credential != "",
		Loading:       s.Loading,
		Result:        s.Result,
		CanGenerate:   s.CanGenerate(),
		GenerateLabel: s.GenerateLabel(),
		CanDownload:   s.CanDownload(),
	}
	if s.Document != nil {
		v.DocumentName = s.Document.Name
		v.PageCount = s.Document.PageCount
	}
	return v
}
