package mongo

import (
	"testing"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSessionFilterScopesToUser(t *testing.T) {
	userID := primitive.NewObjectID()
	filter := sessionFilter(userID, domain.SessionFilter{})
	if len(filter) != 1 || filter["userId"] != userID {
		t.Fatalf("empty filter must only scope by user, got %v", filter)
	}
}

func TestSessionFilterTranslatesEveryCriterion(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	minDur := int64(600)
	maxCal := 500.0
	filter := sessionFilter(primitive.NewObjectID(), domain.SessionFilter{
		Statuses:    []domain.SessionStatus{domain.SessionCompleted},
		StartDate:   &start,
		MinDuration: &minDur,
		MaxCalories: &maxCal,
		Ratings:     []int{5},
		Moods:       []domain.Mood{domain.MoodGreat},
	})

	startRange, ok := filter["startTime"].(bson.M)
	if !ok || startRange["$gte"] != start || startRange["$lte"] != nil {
		t.Fatalf("unexpected startTime range %v", filter["startTime"])
	}
	durRange := filter["totalDuration"].(bson.M)
	if durRange["$gte"] != minDur {
		t.Fatalf("unexpected duration range %v", durRange)
	}
	calRange := filter["totalCaloriesBurned"].(bson.M)
	if calRange["$lte"] != maxCal {
		t.Fatalf("unexpected calories range %v", calRange)
	}
	for _, key := range []string{"status", "rating", "mood"} {
		if _, ok := filter[key].(bson.M)["$in"]; !ok {
			t.Fatalf("expected $in on %s, got %v", key, filter[key])
		}
	}
}

func TestExerciseFilterQuotesSearch(t *testing.T) {
	approved := false
	filter := exerciseFilter(domain.ExerciseFilters{Search: "push (up)", Category: "strength", IsApproved: &approved})

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected name/description $or, got %v", filter["$or"])
	}
	re := or[0].(bson.M)["name"].(primitive.Regex)
	if re.Pattern != `push \(up\)` || re.Options != "i" {
		t.Fatalf("search must be literal and case-insensitive, got %+v", re)
	}
	if filter["category"] != "strength" || filter["isApproved"] != false {
		t.Fatalf("unexpected filter %v", filter)
	}
}

func TestExerciseSortFallsBackToNewest(t *testing.T) {
	got := exerciseSort(domain.SortSpec{Field: "password", Order: "sideways"})
	if got[0].Key != "createdAt" || got[0].Value != -1 {
		t.Fatalf("unexpected sort %v", got)
	}
	got = exerciseSort(domain.SortSpec{Field: "name", Order: domain.SortAsc})
	if got[0].Key != "name" || got[0].Value != 1 {
		t.Fatalf("unexpected sort %v", got)
	}
}

func TestSessionStatsPipelineMatchesUserFirst(t *testing.T) {
	userID := primitive.NewObjectID()
	pipeline := sessionStatsPipeline(userID)
	if len(pipeline) != 3 {
		t.Fatalf("expected match, group, project stages, got %d", len(pipeline))
	}
	match := pipeline[0]["$match"].(bson.M)
	if match["userId"] != userID {
		t.Fatalf("stats must be scoped to the user, got %v", match)
	}
	group := pipeline[1]["$group"].(bson.M)
	for _, field := range []string{"totalSessions", "completedSessions", "stoppedSessions", "averageRating"} {
		if _, ok := group[field]; !ok {
			t.Fatalf("missing %s in $group", field)
		}
	}
}
