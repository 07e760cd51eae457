package main

import (
	"path/filepath"
	"testing"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/client"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"
)

func TestHistoryFlagsBuildQuery(t *testing.T) {
	fs := newFlags("history")
	values := historyFlags(fs)
	args := []string{"--status", "completed,stopped", "--rating", "5", "--from", "2024-03-01", "--min-duration", "0", "--limit", "5"}
	if _, err := parse(fs, args, false); err != nil {
		t.Fatalf("parse: %v", err)
	}

	filter, page, err := session.ParseQuery(values())
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if len(filter.Statuses) != 2 || filter.Statuses[1] != domain.SessionStopped {
		t.Fatalf("unexpected statuses %v", filter.Statuses)
	}
	if len(filter.Ratings) != 1 || filter.Ratings[0] != 5 {
		t.Fatalf("unexpected ratings %v", filter.Ratings)
	}
	if filter.StartDate == nil || filter.StartDate.Day() != 1 {
		t.Fatalf("expected start date, got %v", filter.StartDate)
	}
	if filter.MinDuration == nil || *filter.MinDuration != 0 {
		t.Fatalf("an explicit zero minimum must be kept, got %v", filter.MinDuration)
	}
	if filter.MaxDuration != nil || filter.MinCalories != nil {
		t.Fatalf("unset bounds must stay nil: %+v", filter)
	}
	if page.Limit != 5 || page.Page != 0 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestAnnotationSendsOnlyChangedFlags(t *testing.T) {
	fs := newFlags("annotate")
	a := annotationFlags(fs)
	id, err := parse(fs, []string{"abc", "--rating", "4", "--hr-max", "170"}, true)
	if err != nil || id != "abc" {
		t.Fatalf("parse: %q, %v", id, err)
	}

	out := a.build(fs)
	if out.Rating == nil || *out.Rating != 4 {
		t.Fatalf("expected rating 4, got %v", out.Rating)
	}
	if out.Notes != nil || out.Mood != nil {
		t.Fatalf("unset flags must be omitted: %+v", out)
	}
	if out.HeartRate == nil || out.HeartRate.Max != 170 {
		t.Fatalf("expected heart rate, got %+v", out.HeartRate)
	}
}

func TestParseRequiresID(t *testing.T) {
	if _, err := parse(newFlags("pause"), nil, true); err != errMissingID {
		t.Fatalf("expected errMissingID, got %v", err)
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")

	empty, err := loadTokens(path)
	if err != nil || empty.AccessToken != "" {
		t.Fatalf("missing file should read as logged out: %+v, %v", empty, err)
	}

	if err := saveTokens(path, client.Tokens{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := loadTokens(path)
	if err != nil || got.RefreshToken != "r" {
		t.Fatalf("load: %+v, %v", got, err)
	}

	if err := saveTokens(path, client.Tokens{}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, _ := loadTokens(path); got.AccessToken != "" {
		t.Fatalf("logout should remove the file, got %+v", got)
	}
}
