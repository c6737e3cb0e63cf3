package rest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestASCIIFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"Résumé final.DOCX", "Resume_final.docx"},
		{`C:\Users\bob\notes.txt`, "notes.txt"},
		{"../../etc/passwd", "passwd"},
		{`quo"te.txt`, "quo_te.txt"},
		{"отчёт.pdf", "file.pdf"},
		{"con.txt", "_con.txt"},
		{"..", "file"},
		{"", "file"},
		{"archive.tar.gz", "archive.tar.gz"},
		{strings.Repeat("a", 150) + ".bin", strings.Repeat("a", 100) + ".bin"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, asciiFileName(tt.in))
		})
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t,
		`attachment; filename="report.pdf"; filename*=UTF-8''report.pdf`,
		contentDisposition("report.pdf"),
	)
	assert.Equal(t,
		`attachment; filename="naive_cafe.txt"; filename*=UTF-8''na%C3%AFve%20caf%C3%A9.txt`,
		contentDisposition("naïve café.txt"),
	)
}
