package money

import "testing"

func TestParseCents(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "two decimals", amount: "10.00", want: 1000},
		{name: "no decimals", amount: "7", want: 700},
		{name: "one decimal", amount: "0.5", want: 50},
		{name: "cents only", amount: ".25", want: 25},
		{name: "large amount", amount: "12345.67", want: 1234567},
		{name: "negative", amount: "-3.10", want: -310},
		{name: "leading plus", amount: "+2.00", want: 200},
		{name: "whitespace", amount: " 10.00 ", want: 1000},
		{name: "empty", amount: "", wantErr: true},
		{name: "three decimals", amount: "1.005", wantErr: true},
		{name: "not a number", amount: "ten", wantErr: true},
		{name: "lone dot", amount: ".", wantErr: true},
		{name: "float drift candidate", amount: "19.99", want: 1999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCents(tt.amount)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCents(%q) = %d, want error", tt.amount, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCents(%q) unexpected error: %v", tt.amount, err)
			}
			if got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1000, "10.00"},
		{50, "0.50"},
		{5, "0.05"},
		{-310, "-3.10"},
		{0, "0.00"},
		{1234567, "12345.67"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"10", "10.00"},
		{"10.5", "10.50"},
		{"10.00", "10.00"},
		{".25", "0.25"},
	}

	for _, tt := range tests {
		got, err := Normalize(tt.amount)
		if err != nil {
			t.Fatalf("Normalize(%q) unexpected error: %v", tt.amount, err)
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.amount, got, tt.want)
		}
	}

	if _, err := Normalize("1.234"); err == nil {
		t.Error("Normalize(\"1.234\") expected error")
	}
}
