package mongo

import (
	"context"
	"math"
	"regexp"

	"coachapp/coaching-app/internal/query"
	"coachapp/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// scope is the invariant every query starts from: tenant-owned and not
// soft-deleted. Building it in one place means no handler can forget it.
func scope(trainerID primitive.ObjectID) bson.M {
	return bson.M{"trainerId": trainerID, "isDeleted": false}
}

// buildFilter translates a normalized list query into a bson filter,
// always anchored on the tenant scope.
func buildFilter(trainerID primitive.ObjectID, d query.Descriptor, q query.ListQuery) bson.M {
	filter := scope(trainerID)

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := make(bson.A, 0, len(d.SearchFields))
		for _, f := range d.SearchFields {
			or = append(or, bson.M{f: pattern})
		}
		filter["$or"] = or
	}

	for field, v := range q.Fields {
		if field == "clientId" {
			oid, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				continue
			}
			filter[field] = oid
			continue
		}
		if spellings := expandedValues(d, field, v); spellings != nil {
			filter[field] = bson.M{"$in": spellings}
			continue
		}
		filter[field] = v
	}

	for field, v := range q.BoolFields {
		filter[field] = v
	}

	if len(q.Tags) > 0 && d.TagField != "" {
		filter[d.TagField] = bson.M{"$all": q.Tags}
	}

	if q.DateFrom != nil || q.DateTo != nil {
		rng := bson.M{}
		if q.DateFrom != nil {
			rng["$gte"] = *q.DateFrom
		}
		if q.DateTo != nil {
			rng["$lte"] = *q.DateTo
		}
		filter[d.DateField] = rng
	}

	if q.InactiveSince != nil && d.ActivityField != "" {
		filter[d.ActivityField] = bson.M{"$lte": *q.InactiveSince}
	}

	return filter
}

// expandedValues returns every stored spelling a canonical enum value
// should match, or nil when the field has no legacy spellings.
func expandedValues(d query.Descriptor, field, value string) []string {
	for _, f := range d.Enums {
		if f.Field != field || f.Expand == nil {
			continue
		}
		if spellings, ok := f.Expand[value]; ok {
			return spellings
		}
	}
	return nil
}

func sortSpec(q query.ListQuery) bson.D {
	dir := -1
	if q.SortAsc {
		dir = 1
	}
	return bson.D{{Key: q.SortBy, Value: dir}}
}

// findPage counts and fetches one page. Totals and page contents are read
// in separate round trips; no snapshot isolation is provided.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, q query.ListQuery) (repository.Page[T], error) {
	var page repository.Page[T]

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return page, err
	}

	opts := options.Find().
		SetSort(sortSpec(q)).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.PageSize))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return page, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err = cursor.All(ctx, &items); err != nil {
		return page, err
	}

	page.Items = items
	page.Total = int(total)
	page.Pages = query.Pages(page.Total, q.PageSize)
	return page, nil
}

// countWhere counts documents matching the base scope plus extra criteria.
func countWhere(ctx context.Context, coll *mongo.Collection, base bson.M, extra bson.M) (int, error) {
	filter := bson.M{}
	for k, v := range base {
		filter[k] = v
	}
	for k, v := range extra {
		filter[k] = v
	}
	n, err := coll.CountDocuments(ctx, filter)
	return int(n), err
}

// groupCount runs a $group count over one field, returning value -> count.
func groupCount(ctx context.Context, coll *mongo.Collection, match bson.M, field string) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

// averageWhere returns the rounded average of a numeric field over the
// matching documents, 0 when none match.
func averageWhere(ctx context.Context, coll *mongo.Collection, match bson.M, field string) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$" + field}}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return int(math.Round(rows[0].Avg)), nil
}
