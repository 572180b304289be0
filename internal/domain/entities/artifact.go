package entities

import (
	"strings"
)

// Artifact represents the uploaded input document selected for analysis.
// It is immutable once submitted; selecting a new file replaces it and
// resets the whole workflow.
type Artifact struct {
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
	Language string `json:"language"`
}

// NewArtifact creates an artifact from a server-side path. The display
// name defaults to the last path element when not given.
func NewArtifact(filePath, filename, language string) Artifact {
	if filename == "" {
		filename = baseName(filePath)
	}
	if language == "" {
		language = "en"
	}
	return Artifact{
		FilePath: filePath,
		Filename: filename,
		Language: language,
	}
}

// IsEmpty reports whether no file has been selected
func (a Artifact) IsEmpty() bool {
	return strings.TrimSpace(a.FilePath) == ""
}

// Uploaded files may carry either separator depending on the client OS.
func baseName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		path = path[idx+1:]
	}
	if path == "" {
		return "unknown_file"
	}
	return path
}
