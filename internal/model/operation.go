package model

import "io"

// Upload is one file received from the client, not yet staged.
type Upload struct {
	Filename string
	Data     io.Reader
}

// Result is what one operation hands back to the client: a single output
// reference or an ordered list of them, plus a human-readable message.
type Result struct {
	OutputFile  string   `json:"output_file,omitempty"`
	OutputFiles []string `json:"output_files,omitempty"`
	ZipFile     string   `json:"zip_file,omitempty"`
	Message     string   `json:"message"`
}

// RedactArea is one rectangular blackout region on a 1-based page,
// in PDF points with the origin at the bottom-left corner.
type RedactArea struct {
	Page   int     `json:"page"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}
