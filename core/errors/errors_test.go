package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "chapter", ID: "Gen.51"},
			wantMsg:  "chapter not found: Gen.51",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "book"},
			wantMsg:  "book not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "file", ID: "kjv.xml", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name:    "with field",
			err:     &ValidationError{Field: "document", Message: "must not be nil"},
			wantMsg: "validation failed for document: must not be nil",
		},
		{
			name:    "without field",
			err:     &ValidationError{Message: "bad input"},
			wantMsg: "validation failed: bad input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestIOError(t *testing.T) {
	err := NewIO("open", "/tmp/kjv.xml", fs.ErrNotExist)
	if got, want := err.Error(), "failed to open /tmp/kjv.xml: file does not exist"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("IOError should unwrap to the underlying error")
	}

	noPath := &IOError{Operation: "decompress", Err: fmt.Errorf("bad magic")}
	if got, want := noPath.Error(), "failed to decompress: bad magic"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ParseError
		wantMsg string
	}{
		{
			name:    "with path",
			err:     NewParse("XML", "kjv.xml", "unexpected EOF"),
			wantMsg: "failed to parse XML at kjv.xml: unexpected EOF",
		},
		{
			name:    "without path",
			err:     NewParse("reference", "", "unknown book"),
			wantMsg: "failed to parse reference: unknown book",
		},
		{
			name:    "with line",
			err:     NewParseAt("XML", "kjv.xml", 12, "unexpected EOF"),
			wantMsg: "failed to parse XML at kjv.xml:12: unexpected EOF",
		},
		{
			name:    "line without path",
			err:     NewParseAt("XML", "", 3, "element <verse> closed by </chapter>"),
			wantMsg: "failed to parse XML at line 3: element <verse> closed by </chapter>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ParseError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("document", "root element is not osis")
	if got, want := err.Error(), "unsupported document: root element is not osis"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("UnsupportedError should unwrap to ErrUnsupported")
	}
	if got := (&UnsupportedError{Feature: "style"}).Error(); got != "unsupported style" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHelperFunctions(t *testing.T) {
	nf := NewNotFound("verse", "Gen.1.99")
	if nf.Resource != "verse" || nf.ID != "Gen.1.99" {
		t.Errorf("NewNotFound = %+v", nf)
	}
	v := NewValidation("term", "empty")
	if v.Field != "term" || v.Message != "empty" {
		t.Errorf("NewValidation = %+v", v)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	err := Wrap(ErrNoDocument, "searching")
	if err.Error() != "searching: no document loaded" {
		t.Errorf("Wrap() = %q", err.Error())
	}
	if !Is(err, ErrNoDocument) {
		t.Error("wrapped error should match sentinel")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "loading %s", "x") != nil {
		t.Error("Wrapf(nil) should return nil")
	}
	err := Wrapf(ErrUnsupported, "loading %s", "kjv.xml")
	if err.Error() != "loading kjv.xml: unsupported" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
}

func TestAs(t *testing.T) {
	err := Wrap(NewParse("OSIS", "a.xml", "no osisText"), "load")
	var pe *ParseError
	if !As(err, &pe) {
		t.Fatal("As should find ParseError")
	}
	if pe.Path != "a.xml" {
		t.Errorf("ParseError.Path = %q", pe.Path)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"not found", NewNotFound("verse", "Gen.1.99"), ExitNotFound},
		{"validation", NewValidation("document", "missing"), ExitUsage},
		{"io", NewIO("open", "kjv.xml", fs.ErrNotExist), ExitIO},
		{"parse", NewParseAt("XML", "kjv.xml", 1, "bad"), ExitParse},
		{"unsupported", NewUnsupported("document", "not osis"), ExitUnsupported},
		{"wrapped", Wrapf(NewNotFound("book", "Xyz"), "compare %s", "a.xml"), ExitNotFound},
		{"plain", fmt.Errorf("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
