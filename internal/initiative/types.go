package initiative

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// File selects one of the four documents an initiative owns.
type File string

const (
	FileReadme File = "readme"
	FileNotes  File = "notes"
	FileComms  File = "comms"
	FileLinks  File = "links"
)

// Files lists the selectors in the order documents are reported.
var Files = []File{FileReadme, FileNotes, FileComms, FileLinks}

var fileNames = map[File]string{
	FileReadme: "README.md",
	FileNotes:  "notes.md",
	FileComms:  "comms.md",
	FileLinks:  "links.md",
}

// ParseFile validates a selector taken from a URL or CLI argument.
func ParseFile(raw string) (File, error) {
	f := File(raw)
	if !f.Valid() {
		return "", invalidf("invalid file name %q", raw)
	}
	return f, nil
}

func (f File) Valid() bool {
	_, ok := fileNames[f]
	return ok
}

// Filename is the on-disk name of the document.
func (f File) Filename() string {
	return fileNames[f]
}

// ValidateID rejects ids that are empty or could escape the directory root.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalidf("initiative id is required")
	}
	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return invalidf("invalid initiative id %q", id)
	}
	return nil
}

// Summary is one row of a directory listing.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	Deadline  string `json:"deadline"`
	Blockers  int    `json:"blockers"`
	Directory string `json:"directory"`
}

// Detail carries the raw text of all four documents; absent files are "".
type Detail struct {
	ID     string `json:"id"`
	Readme string `json:"readme"`
	Notes  string `json:"notes"`
	Comms  string `json:"comms"`
	Links  string `json:"links"`
}

// Document returns the text for one selector.
func (d Detail) Document(f File) string {
	switch f {
	case FileReadme:
		return d.Readme
	case FileNotes:
		return d.Notes
	case FileComms:
		return d.Comms
	case FileLinks:
		return d.Links
	}
	return ""
}

type FileContent struct {
	Content string `json:"content"`
}

type CreateRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Directory string `json:"directory"`
}

func (r CreateRequest) normalized() CreateRequest {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.TrimSpace(r.Type)
	return r
}

// Validate implements validation.Validatable.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required.Error("id is required"), validation.By(safeID)),
		validation.Field(&r.Name, validation.Required.Error("name is required")),
	)
}

type NoteRequest struct {
	Note      string `json:"note"`
	Directory string `json:"directory"`
}

func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Note, validation.Required.Error("note is required")),
	)
}

type CommRequest struct {
	Channel   string `json:"channel"`
	Link      string `json:"link"`
	Context   string `json:"context"`
	Directory string `json:"directory"`
}

func (r CommRequest) normalized() CommRequest {
	r.Channel = strings.TrimSpace(r.Channel)
	r.Link = strings.TrimSpace(r.Link)
	r.Context = strings.TrimSpace(r.Context)
	return r
}

func (r CommRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Channel, validation.Required.Error("channel is required")),
		validation.Field(&r.Link, validation.Required.Error("link is required")),
		validation.Field(&r.Context, validation.Required.Error("context is required")),
	)
}

// ReplaceRequest carries new file content. A nil Content means the field was
// absent; an empty string is a valid replacement.
type ReplaceRequest struct {
	Content   *string `json:"content"`
	Directory string  `json:"directory"`
}

func (r ReplaceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.NotNil.Error("content is required")),
	)
}

func safeID(value any) error {
	id, _ := value.(string)
	if err := ValidateID(id); err != nil {
		return validation.NewError("initiative.id_invalid", "must not contain \"..\" or path separators")
	}
	return nil
}
