// Package mongo implements the lead and user repositories on MongoDB
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const leadsCollection = "leads"

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// LeadRepository stores leads in the "leads" collection
type LeadRepository struct {
	coll *mongo.Collection
}

// NewLeadRepository creates a repository on db
func NewLeadRepository(db *mongo.Database) *LeadRepository {
	return &LeadRepository{coll: db.Collection(leadsCollection)}
}

// EnsureIndexes creates the owner listing index
func (r *LeadRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create lead indexes: %w", err)
	}
	return nil
}

// Create inserts lead and sets its id
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	owner, err := primitive.ObjectIDFromHex(lead.OwnerID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", lead.OwnerID, err)
	}

	id := primitive.NewObjectID()
	if lead.ID != "" {
		if id, err = primitive.ObjectIDFromHex(lead.ID); err != nil {
			return fmt.Errorf("invalid lead id %q: %w", lead.ID, err)
		}
	}

	if _, err := r.coll.InsertOne(ctx, toLeadDocument(lead, id, owner)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	lead.ID = id.Hex()
	return nil
}

// GetByID returns the lead if it exists and belongs to ownerID
func (r *LeadRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Lead, error) {
	key, _, _, ok := ownedKey(ownerID, id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var doc leadDocument
	if err := r.coll.FindOne(ctx, key).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	l := doc.toModel()
	return &l, nil
}

// Update replaces the stored lead owned by lead.OwnerID
func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	key, oid, owner, ok := ownedKey(lead.OwnerID, lead.ID)
	if !ok {
		return domain.ErrNotFound
	}

	doc := toLeadDocument(lead, oid, owner)
	res, err := r.coll.ReplaceOne(ctx, key, doc)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the lead if it belongs to ownerID
func (r *LeadRepository) Delete(ctx context.Context, ownerID, id string) error {
	key, _, _, ok := ownedKey(ownerID, id)
	if !ok {
		return domain.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns one page of matching leads plus the total match count
func (r *LeadRepository) List(ctx context.Context, ownerID string, pred filter.Predicate, page models.PageRequest) ([]models.Lead, int64, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []models.Lead{}, 0, nil
	}
	query := BuildQuery(owner, pred)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	page = page.Normalize()
	if int64(page.Offset()) >= total {
		return []models.Lead{}, total, nil
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))

	leads, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListAll returns every matching lead in list order, capped at max when positive
func (r *LeadRepository) ListAll(ctx context.Context, ownerID string, pred filter.Predicate, max int) ([]models.Lead, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []models.Lead{}, nil
	}

	opts := options.Find().SetSort(newestFirst)
	if max > 0 {
		opts.SetLimit(int64(max))
	}
	return r.find(ctx, BuildQuery(owner, pred), opts)
}

// CountByStatus counts every owner's leads per status
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate lead statuses: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode lead statuses: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *LeadRepository) find(ctx context.Context, query bson.D, opts *options.FindOptions) ([]models.Lead, error) {
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer cur.Close(ctx)

	var docs []leadDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}

	leads := make([]models.Lead, 0, len(docs))
	for _, d := range docs {
		leads = append(leads, d.toModel())
	}
	return leads, nil
}

// ownedKey builds the _id + owner_id filter. Malformed ids can never match
// a stored lead, so they report ok=false.
func ownedKey(ownerID, id string) (key bson.D, oid, owner primitive.ObjectID, ok bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, oid, owner, false
	}
	owner, err = primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, oid, owner, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "owner_id", Value: owner}}, oid, owner, true
}
