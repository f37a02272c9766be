// internal/app/store/metrics/metricsstore.go
package metricsstore

import (
	"context"
	"time"

	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProductivityWindowDays is the trailing window the dashboard chart covers.
const ProductivityWindowDays = 14

// Counts is the set of totals shown on the dashboard, scoped to one caller.
type Counts struct {
	TotalProjects  int64 `json:"totalProjects"`
	TotalTasks     int64 `json:"totalTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	TeamMembers    int64 `json:"teamMembers"`
}

// FetchDashboardCounts returns the caller's dashboard totals.
// Intentionally tolerant: on error it returns 0 for that counter, so an
// empty or flaky collection never breaks the dashboard.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database, uid primitive.ObjectID, projectIDs []primitive.ObjectID) Counts {
	var out Counts

	// projects the caller belongs to
	out.TotalProjects = int64(len(projectIDs))

	// visible tasks
	visible := taskstore.VisibilityFilter(uid, projectIDs)
	if n, err := db.Collection("tasks").CountDocuments(ctx, visible); err == nil {
		out.TotalTasks = n
	}

	// completed among visible
	completedFilter := bson.M{"$and": []bson.M{visible, {"status": "completed"}}}
	if n, err := db.Collection("tasks").CountDocuments(ctx, completedFilter); err == nil {
		out.CompletedTasks = n
	}

	// distinct people across the caller's projects (owners + members)
	if len(projectIDs) > 0 {
		scope := bson.M{"_id": bson.M{"$in": projectIDs}}
		people := make(map[primitive.ObjectID]struct{})
		if owners, err := db.Collection("projects").Distinct(ctx, "owner_id", scope); err == nil {
			for _, v := range owners {
				if id, ok := v.(primitive.ObjectID); ok {
					people[id] = struct{}{}
				}
			}
		}
		if members, err := db.Collection("projects").Distinct(ctx, "members.user_id", scope); err == nil {
			for _, v := range members {
				if id, ok := v.(primitive.ObjectID); ok {
					people[id] = struct{}{}
				}
			}
		}
		out.TeamMembers = int64(len(people))
	}

	return out
}

// ProductivityBucket is one day of the dashboard chart.
type ProductivityBucket struct {
	Date      string `json:"date"` // YYYY-MM-DD (UTC)
	Completed int64  `json:"completed"`
}

// FetchProductivity returns one bucket per day over the trailing window,
// oldest first, counting visible tasks completed that day. Days with no
// completions appear with a zero count.
func FetchProductivity(ctx context.Context, db *mongo.Database, uid primitive.ObjectID, projectIDs []primitive.ObjectID) ([]ProductivityBucket, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -(ProductivityWindowDays - 1)).Truncate(24 * time.Hour)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$and": []bson.M{
			taskstore.VisibilityFilter(uid, projectIDs),
			{"completed_at": bson.M{"$gte": start}},
		}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$completed_at",
			}},
			"completed": bson.M{"$sum": 1},
		}}},
	}

	cur, err := db.Collection("tasks").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byDay := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Date      string `bson:"_id"`
			Completed int64  `bson:"completed"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		byDay[row.Date] = row.Completed
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	out := make([]ProductivityBucket, 0, ProductivityWindowDays)
	for i := 0; i < ProductivityWindowDays; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, ProductivityBucket{Date: day, Completed: byDay[day]})
	}
	return out, nil
}

// CountTasksBy groups the caller's visible tasks by the given field
// ("status" or "priority").
func CountTasksBy(ctx context.Context, db *mongo.Database, uid primitive.ObjectID, projectIDs []primitive.ObjectID, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: taskstore.VisibilityFilter(uid, projectIDs)}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
	}
	return groupCounts(ctx, db.Collection("tasks"), pipeline)
}

// CountProjectsByStatus groups the caller's projects by status.
func CountProjectsByStatus(ctx context.Context, db *mongo.Database, projectIDs []primitive.ObjectID) (map[string]int64, error) {
	if len(projectIDs) == 0 {
		return map[string]int64{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": projectIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	return groupCounts(ctx, db.Collection("projects"), pipeline)
}

func groupCounts(ctx context.Context, c *mongo.Collection, pipeline mongo.Pipeline) (map[string]int64, error) {
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Key] = row.Count
	}
	return out, cur.Err()
}
