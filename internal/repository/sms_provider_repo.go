package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

type mongoSmsProviderRepo struct {
	col *mongo.Collection
}

func NewMongoSmsProviderRepo(db *mongo.Database) SmsProviderRepository {
	return &mongoSmsProviderRepo{col: db.Collection(SmsProvidersCollection)}
}

func (r *mongoSmsProviderRepo) List(ctx context.Context) ([]models.SmsProvider, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	providers := make([]models.SmsProvider, 0)
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *mongoSmsProviderRepo) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.SmsProvider, error) {
	var p models.SmsProvider
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
