package trailer

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunAppendsTrailerToExistingBlock(t *testing.T) {
	input := "Subject line\n\nBody paragraph.\n\nSigned-off-by: Alice\n"
	var out bytes.Buffer

	err := Run(context.Background(), nil, NewRegistry(), strings.NewReader(input), &out, RunOptions{
		Args: []string{"Reviewed-by: Bob"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "Subject line\n\nBody paragraph.\n\nSigned-off-by: Alice\nReviewed-by: Bob\n"
	if out.String() != want {
		t.Fatalf("Run output =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestRunCreatesTrailerBlockWhenAbsent(t *testing.T) {
	input := "Subject line\n\nBody paragraph with no colons.\n"
	var out bytes.Buffer

	err := Run(context.Background(), nil, NewRegistry(), strings.NewReader(input), &out, RunOptions{
		Args: []string{"Reviewed-by: Bob"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "Subject line\n\nBody paragraph with no colons.\nReviewed-by: Bob\n"
	if out.String() != want {
		t.Fatalf("Run output =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestRunUsesConfiguredKeyAndSuppressesDuplicate(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	if err := reg.Load(ctx, []byte(`
[[trailer]]
name = "sign"
key = "Signed-off-by"
where = "after"
ifexists = "addIfDifferentNeighbor"
ifmissing = "add"
`)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	input := "Subject\n\nsigned-off-by: Alice\n"
	var out bytes.Buffer
	err := Run(ctx, nil, reg, strings.NewReader(input), &out, RunOptions{
		Args: []string{"Signed-off-by=Alice"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "Subject\n\nSigned-off-by: Alice\n"
	if out.String() != want {
		t.Fatalf("Run output =\n%q\nwant\n%q (duplicate should be suppressed, key canonicalized)", out.String(), want)
	}
}

func TestRunTrimEmptyOmitsEmptyValues(t *testing.T) {
	input := "Subject\n\nSigned-off-by: Alice\n"
	var out bytes.Buffer
	err := Run(context.Background(), nil, NewRegistry(), strings.NewReader(input), &out, RunOptions{
		TrimEmpty: true,
		Args:      []string{"Fixes:"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "Subject\n\nSigned-off-by: Alice\n"
	if out.String() != want {
		t.Fatalf("Run output =\n%q\nwant\n%q (empty-valued trailer should be trimmed)", out.String(), want)
	}
}

func TestRunInvokesConfiguredCommandWithoutArg(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	if err := reg.Load(ctx, []byte(`
[[trailer]]
name = "date"
key = "Date"
command = "date -u"
where = "after"
ifexists = "overwrite"
ifmissing = "add"
`)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fake := &fakeExecutor{t: t, calls: []fakeCall{
		{wantCommand: "date -u", output: "2026-07-31"},
	}}

	input := "Subject\n\nSigned-off-by: Alice\n"
	var out bytes.Buffer
	err := Run(ctx, fake.Executor(), reg, strings.NewReader(input), &out, RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "Subject\n\nSigned-off-by: Alice\nDate: 2026-07-31\n"
	if out.String() != want {
		t.Fatalf("Run output =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestSplitLinesPreservesTerminators(t *testing.T) {
	got := splitLines("a\nb\nc")
	want := []string{"a\n", "b\n", "c"}
	if !equalStrings(got, want) {
		t.Fatalf("splitLines = %v, want %v", got, want)
	}
}
