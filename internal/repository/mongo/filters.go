package mongo

import (
	"regexp"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// exerciseFilter translates library filters into a single conjunctive document.
func exerciseFilter(f domain.ExerciseFilters) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if len(f.PrimaryMuscleGroups) > 0 {
		filter["primaryMuscleGroups"] = bson.M{"$in": f.PrimaryMuscleGroups}
	}
	if len(f.Equipment) > 0 {
		filter["equipment"] = bson.M{"$in": f.Equipment}
	}
	if f.IsApproved != nil {
		filter["isApproved"] = *f.IsApproved
	}
	return filter
}

func exerciseSort(s domain.SortSpec) bson.D {
	s = s.Normalized()
	dir := -1
	if s.Order == domain.SortAsc {
		dir = 1
	}
	return bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: dir}}
}

// sessionFilter scopes a history query to one user and ANDs every supplied criterion.
func sessionFilter(userID primitive.ObjectID, f domain.SessionFilter) bson.M {
	filter := bson.M{"userId": userID}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if r := rangeOf(f.StartDate, f.EndDate); r != nil {
		filter["startTime"] = r
	}
	if r := rangeOf(f.MinDuration, f.MaxDuration); r != nil {
		filter["totalDuration"] = r
	}
	if r := rangeOf(f.MinCalories, f.MaxCalories); r != nil {
		filter["totalCaloriesBurned"] = r
	}
	if len(f.Ratings) > 0 {
		filter["rating"] = bson.M{"$in": f.Ratings}
	}
	if len(f.Moods) > 0 {
		filter["mood"] = bson.M{"$in": f.Moods}
	}
	return filter
}

// rangeOf builds an inclusive {$gte, $lte} document, or nil when both bounds are absent.
func rangeOf[T any](min, max *T) bson.M {
	if min == nil && max == nil {
		return nil
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	return r
}

var sessionHistorySort = bson.D{{Key: "startTime", Value: -1}, {Key: "_id", Value: -1}}

// sessionStatsPipeline groups a user's sessions into one SessionStats document.
// $avg ignores missing ratings, so averageRating covers rated sessions only.
func sessionStatsPipeline(userID primitive.ObjectID) []bson.M {
	countIf := func(status domain.SessionStatus) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
	}
	return []bson.M{
		{"$match": bson.M{"userId": userID}},
		{"$group": bson.M{
			"_id":                 nil,
			"totalSessions":       bson.M{"$sum": 1},
			"completedSessions":   countIf(domain.SessionCompleted),
			"stoppedSessions":     countIf(domain.SessionStopped),
			"totalDuration":       bson.M{"$sum": "$totalDuration"},
			"totalCaloriesBurned": bson.M{"$sum": "$totalCaloriesBurned"},
			"averageDuration":     bson.M{"$avg": "$totalDuration"},
			"averageRating":       bson.M{"$avg": "$rating"},
		}},
		{"$project": bson.M{
			"_id":                 0,
			"totalSessions":       1,
			"completedSessions":   1,
			"stoppedSessions":     1,
			"totalDuration":       1,
			"totalCaloriesBurned": 1,
			"averageDuration":     1,
			"averageRating":       bson.M{"$ifNull": bson.A{"$averageRating", 0}},
		}},
	}
}
