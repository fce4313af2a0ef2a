package core

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delim rune
		want  Fields
	}{
		{
			name: "spec example",
			line: "20250001, Kwesi Mensah, Information Technology, 78",
			want: Fields{"20250001", "Kwesi Mensah", "Information Technology", "78"},
		},
		{
			name: "no spaces",
			line: "20250002,Ama Owusu,CS,91",
			want: Fields{"20250002", "Ama Owusu", "CS", "91"},
		},
		{
			name: "empty fields are kept for the validator",
			line: " , , , ",
			want: Fields{},
		},
		{
			name:  "semicolon delimiter",
			line:  "20250003; Yaw Boateng; Math; 45",
			delim: ';',
			want:  Fields{"20250003", "Yaw Boateng", "Math", "45"},
		},
		{
			name:  "tab delimiter",
			line:  "20250004\tEsi Asante\tPhysics\t60",
			delim: '\t',
			want:  Fields{"20250004", "Esi Asante", "Physics", "60"},
		},
		{
			name: "quoted cells",
			line: `"20250005","Kofi Annan","IT","88"`,
			want: Fields{"20250005", "Kofi Annan", "IT", "88"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line, tt.delim)
			if err != nil {
				t.Fatalf("ParseLine() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine_Malformed(t *testing.T) {
	lines := []string{
		"bad line",
		"",
		"20250001, Kwesi Mensah, IT",
		"20250001, Kwesi Mensah, IT, 78, extra",
		"20250001, Mensah, Kwesi, IT, 78",
		"a,b,c,d,e,f",
	}

	for _, line := range lines {
		_, err := ParseLine(line, ',')
		if !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseLine(%q) error = %v, want ErrMalformedLine", line, err)
		}
	}
}

func TestParseLine_WrongDelimiter(t *testing.T) {
	_, err := ParseLine("20250001;Kwesi;IT;78", ',')
	if !errors.Is(err, ErrMalformedLine) {
		t.Errorf("error = %v, want ErrMalformedLine", err)
	}
}
