package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/repository"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func userBSON(id primitive.ObjectID, email string, role domain.Role, companyID string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Jane Doe"},
		{Key: "email", Value: email},
		{Key: "password", Value: "hash"},
		{Key: "role", Value: string(role)},
		{Key: "companyId", Value: companyID},
		{Key: "status", Value: "pending"},
		{Key: "resetToken", Value: "12345"},
		{Key: "resetTokenExpiry", Value: testNow.Add(time.Hour).UnixMilli()},
		{Key: "createdAt", Value: testNow},
		{Key: "updatedAt", Value: testNow},
	}
}

func TestUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &domain.User{Name: "Jane", Email: "jane@example.com", Role: domain.RoleBaseUser, Status: domain.UserStatusPending}
		require.NoError(mt, store.Create(ctx, user))
		assert.True(mt, primitive.IsValidObjectID(user.ID))
		assert.Equal(mt, testNow, user.CreatedAt)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := store.Create(ctx, &domain.User{Email: "jane@example.com"})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("get by email decodes document", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
			userBSON(id, "jane@example.com", domain.RoleBaseUser, "0000000042")))

		user, err := store.GetByEmail(ctx, "jane@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), user.ID)
		assert.Equal(mt, domain.RoleBaseUser, user.Role)
		assert.Equal(mt, "0000000042", user.CompanyID)
		require.NotNil(mt, user.ResetTokenExpiry)
		assert.True(mt, user.ResetTokenValid("12345", testNow))
	})

	mt.Run("get by email missing", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := store.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))

		_, err := store.GetByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.ErrorIs(mt, store.UpdateStatus(ctx, "nope", domain.UserStatusApproved), repository.ErrNotFound)
	})

	mt.Run("update status unmatched", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.UpdateStatus(ctx, primitive.NewObjectID().Hex(), domain.UserStatusApproved)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("reset password matched", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(mt, store.ResetPassword(ctx, primitive.NewObjectID().Hex(), "newhash"))
	})

	mt.Run("list by company", func(mt *mtest.T) {
		store := NewUserStore(mt.DB, clock.NewFixed(testNow))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
			userBSON(primitive.NewObjectID(), "a@example.com", domain.RoleBaseUser, "0000000042"),
			userBSON(primitive.NewObjectID(), "b@example.com", domain.RoleBaseUser, "0000000042"),
		))

		users, err := store.List(ctx, repository.UserFilter{Role: domain.RoleBaseUser, CompanyID: "0000000042"})
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "a@example.com", users[0].Email)
		assert.Equal(mt, "b@example.com", users[1].Email)
	})
}

func TestEventStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		store := NewEventStore(mt.DB, clock.NewFixed(testNow))
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		event := &domain.Event{
			Name:             "Launch",
			Date:             testNow.Add(24 * time.Hour),
			Location:         "Berlin",
			TicketLevels:     []domain.TicketLevel{{Name: "VIP", Price: 100}},
			CreatedBy:        primitive.NewObjectID().Hex(),
			Status:           domain.EventStatusPending,
			RegistrationCode: "code",
		}
		require.NoError(mt, store.Create(ctx, event))
		assert.True(mt, primitive.IsValidObjectID(event.ID))
	})

	mt.Run("create rejects malformed creator", func(mt *mtest.T) {
		store := NewEventStore(mt.DB, clock.NewFixed(testNow))
		assert.Error(mt, store.Create(ctx, &domain.Event{CreatedBy: "bad"}))
	})

	mt.Run("get by id", func(mt *mtest.T) {
		store := NewEventStore(mt.DB, clock.NewFixed(testNow))
		id := primitive.NewObjectID()
		creator := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.events", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Launch"},
			{Key: "date", Value: testNow},
			{Key: "location", Value: "Berlin"},
			{Key: "ticketLevels", Value: bson.A{bson.D{{Key: "name", Value: "VIP"}, {Key: "price", Value: 100.0}}}},
			{Key: "createdBy", Value: creator},
			{Key: "status", Value: "pending"},
			{Key: "registrationCode", Value: "code"},
		}))

		event, err := store.GetByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, creator.Hex(), event.CreatedBy)
		assert.Equal(mt, []domain.TicketLevel{{Name: "VIP", Price: 100}}, event.TicketLevels)
	})
}
