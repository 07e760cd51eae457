package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/client"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"

	flag "github.com/spf13/pflag"
)

var errMissingID = errors.New("missing id argument")

// parse binds a command's flags and returns its single positional id when wantID is set.
func parse(fs *flag.FlagSet, args []string, wantID bool) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if !wantID {
		return "", nil
	}
	if fs.NArg() != 1 {
		return "", errMissingID
	}
	return fs.Arg(0), nil
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func runRegister(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("FITCTL_PASSWORD"), "password (or FITCTL_PASSWORD)")
	if _, err := parse(fs, args, false); err != nil {
		return nil, err
	}
	return c.Register(ctx, *name, *email, *password)
}

func runLogin(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("FITCTL_PASSWORD"), "password (or FITCTL_PASSWORD)")
	if _, err := parse(fs, args, false); err != nil {
		return nil, err
	}
	return c.Login(ctx, *email, *password)
}

func runLogout(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	return nil, c.Logout(ctx)
}

func runStart(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	id, err := parse(newFlags("start"), args, true)
	if err != nil {
		return nil, err
	}
	return c.StartSession(ctx, id)
}

func runActive(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	ws, err := c.ActiveSession(ctx)
	if err != nil || ws != nil {
		return ws, err
	}
	fmt.Fprintln(os.Stderr, "no active session")
	return nil, nil
}

func runShow(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	id, err := parse(newFlags("show"), args, true)
	if err != nil {
		return nil, err
	}
	return c.GetSession(ctx, id)
}

func sessionAction(call func(*client.Client, context.Context, string) (*domain.WorkoutSession, error)) func(context.Context, *client.Client, []string) (interface{}, error) {
	return func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		id, err := parse(newFlags("session"), args, true)
		if err != nil {
			return nil, err
		}
		return call(c, ctx, id)
	}
}

func runLogSet(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("log-set")
	var set client.SetInput
	fs.IntVar(&set.ExerciseIndex, "exercise", 0, "exercise index within the workout")
	fs.StringVar(&set.ExerciseID, "exercise-id", "", "exercise id, checked against the workout")
	fs.IntVar(&set.SetIndex, "set", 0, "set index; re-logging an index replaces it")
	fs.IntVar(&set.Reps, "reps", 0, "repetitions")
	fs.Float64Var(&set.Weight, "weight", 0, "weight in kg")
	fs.Int64Var(&set.Duration, "duration", 0, "seconds spent on the set")
	fs.Int64Var(&set.RestTime, "rest", 0, "rest after the set in seconds")
	fs.StringVar(&set.Notes, "notes", "", "free text")
	id, err := parse(fs, args, true)
	if err != nil {
		return nil, err
	}
	return c.LogSet(ctx, id, set)
}

func runCompleteExercise(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("complete-exercise")
	index := fs.Int("exercise", 0, "exercise index within the workout")
	calories := fs.Float64("calories", 0, "calories burned, replaces any earlier value")
	id, err := parse(fs, args, true)
	if err != nil {
		return nil, err
	}
	return c.CompleteExercise(ctx, id, *index, *calories)
}

func runComplete(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("complete")
	a := annotationFlags(fs)
	id, err := parse(fs, args, true)
	if err != nil {
		return nil, err
	}
	return c.CompleteSession(ctx, id, a.build(fs))
}

func runAnnotate(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("annotate")
	a := annotationFlags(fs)
	id, err := parse(fs, args, true)
	if err != nil {
		return nil, err
	}
	return c.AnnotateSession(ctx, id, a.build(fs))
}

func runDelete(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	id, err := parse(newFlags("delete"), args, true)
	if err != nil {
		return nil, err
	}
	return nil, c.DeleteSession(ctx, id)
}

func runHistory(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("history")
	values := historyFlags(fs)
	if _, err := parse(fs, args, false); err != nil {
		return nil, err
	}
	filter, page, err := session.ParseQuery(values())
	if err != nil {
		return nil, err
	}
	return c.ListSessions(ctx, filter, page)
}

func runStats(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	return c.SessionStats(ctx)
}

func runExercises(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("exercises")
	var q domain.ExerciseQuery
	fs.StringVar(&q.Filters.Search, "search", "", "text search on name and description")
	fs.StringVar(&q.Filters.Category, "category", "", "category")
	fs.StringVar(&q.Filters.Difficulty, "difficulty", "", "difficulty")
	fs.StringSliceVar(&q.Filters.PrimaryMuscleGroups, "muscle", nil, "primary muscle group, repeatable")
	fs.StringSliceVar(&q.Filters.Equipment, "equipment", nil, "equipment, repeatable")
	fs.StringVar(&q.Sort.Field, "sort", "", "sort field")
	fs.StringVar(&q.Sort.Order, "order", "", "asc or desc")
	fs.IntVar(&q.Page, "page", 0, "page number")
	fs.IntVar(&q.Limit, "limit", 0, "page size")
	if _, err := parse(fs, args, false); err != nil {
		return nil, err
	}
	return c.ListExercises(ctx, q)
}

func runWorkouts(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
	fs := newFlags("workouts")
	var page domain.PageRequest
	fs.IntVar(&page.Page, "page", 0, "page number")
	fs.IntVar(&page.Limit, "limit", 0, "page size")
	if _, err := parse(fs, args, false); err != nil {
		return nil, err
	}
	return c.ListWorkouts(ctx, page)
}

type annotationInput struct {
	notes  *string
	rating *int
	mood   *string
	hrAvg  *int
	hrMax  *int
	hrMin  *int
}

func annotationFlags(fs *flag.FlagSet) annotationInput {
	return annotationInput{
		notes:  fs.String("notes", "", "session notes"),
		rating: fs.Int("rating", 0, "rating from 1 to 5"),
		mood:   fs.String("mood", "", "great, good, okay, tired or exhausted"),
		hrAvg:  fs.Int("hr-avg", 0, "average heart rate"),
		hrMax:  fs.Int("hr-max", 0, "max heart rate"),
		hrMin:  fs.Int("hr-min", 0, "min heart rate"),
	}
}

// build sends only the flags the user actually set, so omitted fields stay untouched.
func (a annotationInput) build(fs *flag.FlagSet) client.Annotation {
	var out client.Annotation
	if fs.Changed("notes") {
		out.Notes = a.notes
	}
	if fs.Changed("rating") {
		out.Rating = a.rating
	}
	if fs.Changed("mood") {
		m := domain.Mood(*a.mood)
		out.Mood = &m
	}
	if fs.Changed("hr-avg") || fs.Changed("hr-max") || fs.Changed("hr-min") {
		out.HeartRate = &domain.HeartRateStats{Average: *a.hrAvg, Max: *a.hrMax, Min: *a.hrMin}
	}
	return out
}

// historyFlags registers the history filters and returns a func yielding them as query values.
func historyFlags(fs *flag.FlagSet) func() url.Values {
	statuses := fs.StringSlice("status", nil, "active, paused, completed or stopped; repeatable")
	moods := fs.StringSlice("mood", nil, "mood; repeatable")
	ratings := fs.IntSlice("rating", nil, "rating; repeatable")
	from := fs.String("from", "", "earliest start date (RFC 3339 or YYYY-MM-DD)")
	to := fs.String("to", "", "latest start date (RFC 3339 or YYYY-MM-DD)")
	minDuration := fs.Int64("min-duration", 0, "minimum duration in seconds")
	maxDuration := fs.Int64("max-duration", 0, "maximum duration in seconds")
	minCalories := fs.Float64("min-calories", 0, "minimum calories")
	maxCalories := fs.Float64("max-calories", 0, "maximum calories")
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")

	return func() url.Values {
		v := url.Values{}
		for _, s := range *statuses {
			v.Add("status", s)
		}
		for _, m := range *moods {
			v.Add("mood", m)
		}
		for _, r := range *ratings {
			v.Add("rating", strconv.Itoa(r))
		}
		if fs.Changed("from") {
			v.Set("startDate", *from)
		}
		if fs.Changed("to") {
			v.Set("endDate", *to)
		}
		if fs.Changed("min-duration") {
			v.Set("minDuration", strconv.FormatInt(*minDuration, 10))
		}
		if fs.Changed("max-duration") {
			v.Set("maxDuration", strconv.FormatInt(*maxDuration, 10))
		}
		if fs.Changed("min-calories") {
			v.Set("minCalories", strconv.FormatFloat(*minCalories, 'f', -1, 64))
		}
		if fs.Changed("max-calories") {
			v.Set("maxCalories", strconv.FormatFloat(*maxCalories, 'f', -1, 64))
		}
		if *page > 0 {
			v.Set("page", strconv.Itoa(*page))
		}
		if *limit > 0 {
			v.Set("limit", strconv.Itoa(*limit))
		}
		return v
	}
}
