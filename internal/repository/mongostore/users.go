// Package mongostore implements the repository interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/repository"
)

const usersCollection = "users"

type userDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Email            string             `bson:"email"`
	Password         string             `bson:"password"`
	Role             string             `bson:"role"`
	Company          string             `bson:"company,omitempty"`
	CompanyID        string             `bson:"companyId,omitempty"`
	Status           string             `bson:"status"`
	ResetToken       *string            `bson:"resetToken,omitempty"`
	ResetTokenExpiry *int64             `bson:"resetTokenExpiry,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func (d *userDoc) toDomain() *domain.User {
	user := &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         domain.Role(d.Role),
		Company:      d.Company,
		CompanyID:    d.CompanyID,
		Status:       domain.UserStatus(d.Status),
		ResetToken:   d.ResetToken,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.ResetTokenExpiry != nil {
		expiry := time.UnixMilli(*d.ResetTokenExpiry).UTC()
		user.ResetTokenExpiry = &expiry
	}
	return user
}

// UserStore is the MongoDB-backed repository.UserRepository.
type UserStore struct {
	c     *mongo.Collection
	clock clock.Clock
}

// NewUserStore creates a store over the users collection.
func NewUserStore(db *mongo.Database, clk clock.Clock) *UserStore {
	return &UserStore{c: db.Collection(usersCollection), clock: clk}
}

// EnsureIndexes creates the uniqueness and lookup indexes for users.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_users_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "companyId", Value: 1}},
			Options: options.Index().SetName("idx_users_role_company"),
		},
	}
	if _, err := s.c.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure users indexes: %w", err)
	}
	return nil
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	now := s.clock.Now()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      string(user.Role),
		Company:   user.Company,
		CompanyID: user.CompanyID,
		Status:    string(user.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) GetOwnerByCompanyID(ctx context.Context, companyID string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"role": string(domain.RoleEventOwner), "companyId": companyID})
}

func (s *UserStore) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{"status": string(status), "updatedAt": s.clock.Now()}})
}

func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": s.clock.Now()}})
}

func (s *UserStore) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{
		"resetToken":       token,
		"resetTokenExpiry": expiry.UnixMilli(),
		"updatedAt":        s.clock.Now(),
	}})
}

func (s *UserStore) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return s.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": s.clock.Now()},
		"$unset": bson.M{"resetToken": "", "resetTokenExpiry": ""},
	})
}

func (s *UserStore) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	if filter.CompanyID != "" {
		query["companyId"] = filter.CompanyID
	}

	cur, err := s.c.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]domain.User, 0)
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := s.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *UserStore) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserStore)(nil)
