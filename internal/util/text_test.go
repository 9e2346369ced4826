package util

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   \t\n", ""},
		{"Severe Headache!!", "severe headache"},
		{"sore-throat", "sore-throat"},
		{"a 3-day fever", "a 3-day fever"},
		{"fever of 38.5, since 2. days", "fever of 38.5 since 2 days"},
		{"I can't breathe", "i cant breathe"},
		{"it’s bad", "its bad"},
		{"pain -- and -- more", "pain and more"},
		{"ＦＥＶＥＲ", "fever"},
		{"chest pain", "chest pain"},
		{"<b>rash</b>", "b rash b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{"Severe Headache & FEVER (3 days)", "one-sided weakness...", "1.5 weeks"}
	for _, in := range inputs {
		once := NormalizeText(in)
		if twice := NormalizeText(once); twice != once {
			t.Errorf("NormalizeText not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("shortness of breath")
	want := []string{"shortness", "of", "breath"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
	if got := Tokens(""); len(got) != 0 {
		t.Errorf("Tokens(\"\") = %v, want empty", got)
	}
}
