package record

import (
	"io"
	"reflect"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string) []Record {
	t.Helper()
	rd, err := NewStringReader(input)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	var recs []Record
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return recs
		}
		if err != nil {
			t.Fatalf("Next() unexpected error: %v", err)
		}
		recs = append(recs, rec)
	}
}

func TestReaderFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "simple fields",
			input: "30.0 1800.0 100.0 PTH J1 PIN ECAD\n",
			want:  [][]string{{"30.0", "1800.0", "100.0", "PTH", "J1", "PIN", "ECAD"}},
		},
		{
			name:  "quoted field keeps spaces",
			input: `BOARD_FILE 3.0 "Sample File Generator" 10/22/96.16:02:44 1`,
			want:  [][]string{{"BOARD_FILE", "3.0", "Sample File Generator", "10/22/96.16:02:44", "1"}},
		},
		{
			name:  "empty quoted field",
			input: `A "" B`,
			want:  [][]string{{"A", "", "B"}},
		},
		{
			name:  "blank lines and comments skipped",
			input: "# comment line\n\n.HEADER\n   \n# another\n.END_HEADER\n",
			want:  [][]string{{".HEADER"}, {".END_HEADER"}},
		},
		{
			name:  "trailing comment",
			input: "0 5.5 -120.0 0.0 # outline point\n",
			want:  [][]string{{"0", "5.5", "-120.0", "0.0"}},
		},
		{
			name:  "crlf line endings",
			input: ".HEADER\r\n.END_HEADER\r\n",
			want:  [][]string{{".HEADER"}, {".END_HEADER"}},
		},
		{
			name:  "no trailing newline",
			input: ".END_PLACEMENT",
			want:  [][]string{{".END_PLACEMENT"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := readAll(t, tt.input)
			var got [][]string
			for _, r := range recs {
				got = append(got, r.Fields)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReaderLineNumbers(t *testing.T) {
	input := "# header comment\n.HEADER\n\nBOARD_FILE 3.0 \"Gen\" 10/22/96 1\n.END_HEADER\n"
	recs := readAll(t, input)

	wantLines := []int{2, 4, 5}
	if len(recs) != len(wantLines) {
		t.Fatalf("Expected %d records, got %d", len(wantLines), len(recs))
	}
	for i, want := range wantLines {
		if recs[i].Line != want {
			t.Errorf("record %d: line = %d, want %d", i, recs[i].Line, want)
		}
	}
}

func TestReaderUnterminatedQuote(t *testing.T) {
	rd, err := NewStringReader(".HEADER\nBOARD_FILE 3.0 \"no closing quote\n")
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}

	if _, err := rd.Next(); err != nil {
		t.Fatalf("First record should parse, got error: %v", err)
	}
	_, err = rd.Next()
	if err == nil {
		t.Fatal("Expected error for unterminated quote, got nil")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Error should name line 2, got: %v", err)
	}
}

func TestRecordHelpers(t *testing.T) {
	recs := readAll(t, ".board_outline MCAD\n0 5.5 -120.0 360\n.END_BOARD_OUTLINE\n")
	if len(recs) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(recs))
	}

	start, point, end := recs[0], recs[1], recs[2]

	if !start.IsSectionStart() || start.IsSectionEnd() {
		t.Errorf("start record misclassified: start=%v end=%v", start.IsSectionStart(), start.IsSectionEnd())
	}
	if start.SectionName() != "BOARD_OUTLINE" {
		t.Errorf("SectionName() = %q, want BOARD_OUTLINE", start.SectionName())
	}
	if !end.IsSectionEnd() || end.SectionName() != "BOARD_OUTLINE" {
		t.Errorf("end record misclassified: end=%v name=%q", end.IsSectionEnd(), end.SectionName())
	}

	if point.IsSectionStart() || point.IsSectionEnd() {
		t.Error("point record misclassified as section marker")
	}
	if label, err := point.Int(0); err != nil || label != 0 {
		t.Errorf("Int(0) = %d, %v, want 0, nil", label, err)
	}
	if x, err := point.Float(1); err != nil || x != 5.5 {
		t.Errorf("Float(1) = %g, %v, want 5.5, nil", x, err)
	}
	if y, err := point.Float(2); err != nil || y != -120.0 {
		t.Errorf("Float(2) = %g, %v, want -120.0, nil", y, err)
	}

	if _, err := point.Float(7); err == nil {
		t.Error("Float(7) expected out-of-range error, got nil")
	}
	if _, err := start.Float(1); err == nil {
		t.Error("Float on keyword expected error, got nil")
	}
}
