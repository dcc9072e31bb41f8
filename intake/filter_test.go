package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/shared/Invoice.PDF", true},
		{"/shared/contract.docx", true},
		{"/shared/old.doc", true},
		{"/shared/notes.txt", false},
		{"/shared/archive.pdf.zip", false},
		{"/shared/report.tar.pdf", true},
		{"/shared/noext", false},
		{"/shared/.pdf", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.path))
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	assert.Equal(t, []string{".doc", ".docx", ".pdf"}, exts)

	exts[0] = ".exe"
	assert.False(t, Supported("x.exe"), "returned slice is a copy")
}
