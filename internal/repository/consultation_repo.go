package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

type mongoConsultationRepo struct {
	consultations *mongo.Collection
	users         *mongo.Collection
}

func NewMongoConsultationRepo(db *mongo.Database) ConsultationRepository {
	return &mongoConsultationRepo{
		consultations: db.Collection(ConsultationsCollection),
		users:         db.Collection(UsersCollection),
	}
}

func (r *mongoConsultationRepo) DoctorEmail(ctx context.Context, consultationID primitive.ObjectID) (string, error) {
	var c models.Consultation
	err := r.consultations.FindOne(ctx, bson.M{"_id": consultationID},
		options.FindOne().SetProjection(bson.M{"doctor": 1})).Decode(&c)
	if err != nil {
		return "", notFound(err)
	}
	if c.Doctor.IsZero() {
		return "", ErrNotFound
	}

	var doctor models.User
	err = r.users.FindOne(ctx, bson.M{"_id": c.Doctor},
		options.FindOne().SetProjection(bson.M{"email": 1})).Decode(&doctor)
	if err != nil {
		return "", notFound(err)
	}
	return doctor.Email, nil
}
