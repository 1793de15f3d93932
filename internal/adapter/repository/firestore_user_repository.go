package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	user.Normalize()
	user.CreatedAt = time.Time{}

	path := docPath(usersCollection, user.ID)
	if _, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user); err != nil {
		return storeFailure("Failed to create user profile", path, events.OpCreate, user, err)
	}
	user.CreatedAt = time.Now().UTC()
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, storeFailure("Failed to get user", docPath(usersCollection, id), events.OpGet, nil, err)
	}

	user, err := decodeUser(doc)
	if err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return user, nil
}

func (r *firestoreUserRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	updateData := map[string]interface{}{
		"name":           user.Name,
		"profilePicture": user.Avatar,
		"location":       user.Location,
	}

	// empty values keep what is stored
	cleanUpdateData := make(map[string]interface{})
	for key, value := range updateData {
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		cleanUpdateData[key] = value
	}
	if len(cleanUpdateData) == 0 {
		return nil
	}

	path := docPath(usersCollection, user.ID)
	logger.Debug("Updating user profile %s: %+v", user.ID, cleanUpdateData)
	if _, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, cleanUpdateData, firestore.MergeAll); err != nil {
		return storeFailure("Failed to update user profile", path, events.OpUpdate, cleanUpdateData, err)
	}
	return nil
}

func (r *firestoreUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	path := docPath(usersCollection, id)
	_, err := r.client.Collection(usersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "role", Value: role},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("User", err)
		}
		return storeFailure("Failed to update user role", path, events.OpUpdate, map[string]interface{}{"role": role}, err)
	}
	return nil
}

func (r *firestoreUserRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	base := r.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc)

	total, err := r.count(ctx, base)
	if err != nil {
		return nil, 0, storeFailure("Failed to count users", usersCollection, events.OpList, nil, err)
	}

	q := base
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, storeFailure("Failed to list users", usersCollection, events.OpList, nil, err)
	}

	users := make([]*entity.User, 0, len(docs))
	for _, doc := range docs {
		u, err := decodeUser(doc)
		if err != nil {
			logger.Warn("Skipping malformed user document: %v", err)
			continue
		}
		users = append(users, u)
	}
	return users, total, nil
}

func (r *firestoreUserRepository) count(ctx context.Context, q firestore.Query) (int64, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, nil
	}
	return v.GetIntegerValue(), nil
}
