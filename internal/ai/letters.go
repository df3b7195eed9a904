// Package ai holds the letter-generation collaborator contract and the
// prompt assembly for cover letters.
package ai

import (
	"context"
	"fmt"
	"strings"

	"applyflow-engine/internal/domain"
)

// LetterWriter is the text-generation collaborator. The pipeline treats it
// as a black box: prompt in, letter out.
type LetterWriter interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LetterPrompt builds a language-aware prompt from the finished record.
// Kept dumb on purpose; the model does the writing.
func LetterPrompt(rec domain.JobRecord) string {
	var b strings.Builder

	if rec.Language == domain.LanguageGerman {
		b.WriteString("Schreibe ein prägnantes Anschreiben für die folgende Stelle.\n")
	} else {
		b.WriteString("Write a concise cover letter for the following position.\n")
	}

	fmt.Fprintf(&b, "Position: %s\n", rec.JobTitleClean)
	fmt.Fprintf(&b, "Company: %s\n", rec.CompanyName)
	if rec.Location != "" {
		fmt.Fprintf(&b, "Location: %s (%s)\n", rec.Location, rec.WorkMode)
	}
	if rec.CompanyJobReference != "" {
		fmt.Fprintf(&b, "Reference: %s\n", rec.CompanyJobReference)
	}
	if rec.Contact != nil && rec.Contact.Name != "" {
		fmt.Fprintf(&b, "Contact person: %s\n", rec.Contact.Name)
	}
	if rec.JobDescription != "" {
		b.WriteString("\nJob description:\n")
		b.WriteString(rec.JobDescription)
		b.WriteString("\n")
	}

	return b.String()
}
