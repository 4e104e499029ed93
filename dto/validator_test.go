package dto

import (
	"testing"
)

func TestValidateCPFRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cpf   string
		valid bool
	}{
		{"123.456.789-00", true},
		{"12345678900", true},
		{"123 456 789 00", true},
		{"", true}, // omitempty: blank skips the rule
		{"1234567890", false},
		{"123456789000", false},
		{"123.456.789-0a", false},
		{"12345678900'; DROP TABLE", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.cpf, func(t *testing.T) {
			t.Parallel()

			req := ServidorSearchRequest{Grau: "1", CPF: tt.cpf}
			err := req.Validate()
			if tt.valid && err != nil {
				t.Fatalf("CPF %q rejected: %v", tt.cpf, err)
			}
			if !tt.valid && err == nil {
				t.Fatalf("CPF %q accepted", tt.cpf)
			}
		})
	}
}

func TestSearchRequestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     interface{ Validate() error }
		wantErr bool
	}{
		{name: "orgaos degree 1", req: OrgaoJulgadorSearchRequest{Grau: "1"}},
		{name: "orgaos degree 2 with search", req: OrgaoJulgadorSearchRequest{Grau: "2", Search: "vara"}},
		{name: "orgaos missing grau", req: OrgaoJulgadorSearchRequest{}, wantErr: true},
		{name: "orgaos bad grau", req: OrgaoJulgadorSearchRequest{Grau: "3"}, wantErr: true},
		{name: "orgaos one-char search", req: OrgaoJulgadorSearchRequest{Grau: "1", Search: "v"}, wantErr: true},
		{name: "processos full filters", req: ProcessoSearchRequest{Grau: "1", Numero: "0001234", Ano: "2024", OrgaoJulgadorID: "42"}},
		{name: "processos bad year", req: ProcessoSearchRequest{Grau: "1", Ano: "24"}, wantErr: true},
		{name: "processos non-numeric orgao id", req: ProcessoSearchRequest{Grau: "1", OrgaoJulgadorID: "abc"}, wantErr: true},
		{name: "servidores by name", req: ServidorSearchRequest{Grau: "2", Nome: "maria"}},
		{name: "servidores missing grau", req: ServidorSearchRequest{Nome: "maria"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	t.Parallel()

	err := OrgaoJulgadorSearchRequest{Grau: "9"}.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(formatted), formatted)
	}
	if formatted[0].Field != "Grau" {
		t.Fatalf("field = %q, want Grau", formatted[0].Field)
	}
	if formatted[0].Message != "Grau must be one of: 1 2" {
		t.Fatalf("message = %q", formatted[0].Message)
	}
}
