package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

type mongoTemplateRepo struct {
	col *mongo.Collection
}

func NewMongoTemplateRepo(db *mongo.Database) TemplateRepository {
	return &mongoTemplateRepo{col: db.Collection(TemplatesCollection)}
}

func (r *mongoTemplateRepo) Create(ctx context.Context, t *models.WhatsappTemplate) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *mongoTemplateRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WhatsappTemplate, error) {
	var t models.WhatsappTemplate
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *mongoTemplateRepo) Find(ctx context.Context, filter models.TemplateFilter) ([]models.WhatsappTemplate, error) {
	query := bson.M{}
	if filter.Language != "" {
		query["language"] = filter.Language
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := make([]models.WhatsappTemplate, 0)
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// transitionUpdate builds the update for tr. A rejection reason only survives
// on rejected templates.
func transitionUpdate(tr models.TemplateTransition, now time.Time) bson.M {
	set := bson.M{"status": tr.To, "updatedAt": now}
	update := bson.M{}
	if tr.TwilioTemplateID != "" {
		set["twilioTemplateId"] = tr.TwilioTemplateID
	}
	if tr.To == models.TemplateStatusRejected {
		set["rejectionReason"] = tr.RejectionReason
	} else {
		update["$unset"] = bson.M{"rejectionReason": ""}
	}
	update["$set"] = set
	return update
}

func (r *mongoTemplateRepo) Transition(ctx context.Context, id primitive.ObjectID, tr models.TemplateTransition) error {
	update := transitionUpdate(tr, time.Now().UTC())
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "status": tr.From}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the record is gone or someone else moved its status.
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStaleStatus
	}
	return nil
}

func (r *mongoTemplateRepo) Delete(ctx context.Context, id primitive.ObjectID) (*models.WhatsappTemplate, error) {
	var t models.WhatsappTemplate
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}
