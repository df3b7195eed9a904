package extract

import "testing"

func TestFindReference(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"referenznummer", "Ihre Bewerbung. Referenznummer: XYZ-999 bitte angeben.", "XYZ-999"},
		{"kennziffer", "Kennziffer 2024/042 im Betreff nennen", "2024/042"},
		{"stellen id", "Stellen-ID: 12345678", "12345678"},
		{"english", "Please quote reference number REQ-77 when applying", "REQ-77"},
		{"requisition", "Requisition ID: R0012345", "R0012345"},
		{"label order", "Job-ID: 111 Referenznummer: ABC-1", "ABC-1"},
		{"lowercase label", "referenznummer: ab-123", "ab-123"},
		{"none", "We look forward to your application.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindReference(tt.text); got != tt.want {
				t.Errorf("FindReference(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindContactEmail(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Fragen an bewerbung@acme.de senden", "bewerbung@acme.de"},
		{"skips noreply", "Mail von noreply@board.de, echte Fragen an jobs@acme.de", "jobs@acme.de"},
		{"skips placeholder", "mail@example.com", ""},
		{"skips do-not-reply", "do-not-reply@acme.de", ""},
		{"none", "keine Adresse hier", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindContactEmail(tt.text); got != tt.want {
				t.Errorf("FindContactEmail(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindContactPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"german landline", "Rufen Sie uns an: +49 30 1234567", "+49 30 1234567"},
		{"grouped", "Tel. 030 / 123 456 78", "030 / 123 456 78"},
		{"date excluded", "Bewerbungsschluss 01.02.2024", ""},
		{"year excluded", "Gegründet 1998, seit 2005 in Berlin", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindContactPhone(tt.text); got != tt.want {
				t.Errorf("FindContactPhone(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindContactName(t *testing.T) {
	if got := FindContactName("Ansprechpartnerin: Maria Schmidt\nTel: 030"); got != "Maria Schmidt" {
		t.Errorf("got %q", got)
	}
	if got := FindContactName("no contact block"); got != "" {
		t.Errorf("got %q", got)
	}
}
