package mongo

import (
	"regexp"

	"github.com/jordanlanch/leadboard/pkg/filter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildQuery renders pred as a MongoDB filter ANDed with the owner term.
// Each condition becomes its own $and clause so repeated operators on one
// field never overwrite each other.
func BuildQuery(ownerID primitive.ObjectID, pred filter.Predicate) bson.D {
	clauses := bson.A{bson.D{{Key: "owner_id", Value: ownerID}}}
	for _, c := range pred.Conditions {
		if clause, ok := renderCondition(c); ok {
			clauses = append(clauses, clause)
		}
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

var mongoOps = map[filter.Op]string{
	filter.OpGt:  "$gt",
	filter.OpLt:  "$lt",
	filter.OpGte: "$gte",
	filter.OpLte: "$lte",
}

func renderCondition(c filter.Condition) (bson.D, bool) {
	switch c.Op {
	case filter.OpEq:
		return bson.D{{Key: c.Field, Value: c.Value}}, true
	case filter.OpContains:
		s, ok := c.Value.(string)
		if !ok {
			return nil, false
		}
		// user text is quoted so it can never act as a pattern
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		return bson.D{{Key: c.Field, Value: re}}, true
	case filter.OpIn:
		return bson.D{{Key: c.Field, Value: bson.D{{Key: "$in", Value: c.Value}}}}, true
	default:
		op, ok := mongoOps[c.Op]
		if !ok {
			return nil, false
		}
		return bson.D{{Key: c.Field, Value: bson.D{{Key: op, Value: c.Value}}}}, true
	}
}
