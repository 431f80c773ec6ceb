package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already used")
	ErrStaleStatus    = errors.New("record status changed concurrently")
)

const (
	UsersCollection         = "users"
	SmsProvidersCollection  = "smsproviders"
	TemplatesCollection     = "whatsapptemplates"
	ConsultationsCollection = "consultations"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindOthersByEmail returns users with email whose id is not excludeID.
	// A zero excludeID excludes nobody.
	FindOthersByEmail(ctx context.Context, email string, excludeID primitive.ObjectID) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error)
}

type SmsProviderRepository interface {
	// List returns providers by ascending order.
	List(ctx context.Context) ([]models.SmsProvider, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.SmsProvider, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, t *models.WhatsappTemplate) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.WhatsappTemplate, error)
	Find(ctx context.Context, filter models.TemplateFilter) ([]models.WhatsappTemplate, error)
	// Transition writes tr only if the stored status still equals tr.From.
	Transition(ctx context.Context, id primitive.ObjectID, tr models.TemplateTransition) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.WhatsappTemplate, error)
}

type ConsultationRepository interface {
	// DoctorEmail resolves the email of the consultation's doctor.
	DoctorEmail(ctx context.Context, consultationID primitive.ObjectID) (string, error)
}

// EnsureIndexes creates the indexes the application relies on. The unique
// sparse email index is what actually enforces email uniqueness.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(TemplatesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "language", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "twilioTemplateId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
