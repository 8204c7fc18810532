package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestErrorMessageAndUnwrap(t *testing.T) {
	err := Config("open template", os.ErrNotExist, "template %q is missing", "t.pptx")
	want := `[CONFIG] open template: template "t.pptx" is missing: file does not exist`
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os.ErrNotExist")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	base := Consistency("timeline", "slide %d: %d text fragments, %d audio fragments", 2, 3, 2)
	wrapped := fmt.Errorf("ppt2video: %w", base)
	if !Is(wrapped, KindConsistency) {
		t.Fatalf("expected consistency kind through wrap")
	}
	if Is(wrapped, KindExternal) {
		t.Fatalf("unexpected external kind")
	}
	if Is(errors.New("plain"), KindConsistency) {
		t.Fatalf("plain error must not match")
	}
}
