package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
)

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	ref := r.client.Collection(productsCollection).NewDoc()
	product.ID = ref.ID
	product.CreatedAt = time.Time{}
	if product.FavoritedBy == nil {
		product.FavoritedBy = []string{}
	}

	if _, err := ref.Create(ctx, product); err != nil {
		return storeFailure("Failed to create product", docPath(productsCollection, ref.ID), events.OpCreate, product, err)
	}
	product.CreatedAt = time.Now().UTC()
	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.client.Collection(productsCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Product", err)
		}
		return nil, storeFailure("Failed to get product", docPath(productsCollection, id), events.OpGet, nil, err)
	}

	product, err := decodeProduct(doc)
	if err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}
	return product, nil
}

// RunPlan translates a builder plan into a Firestore query.
func (r *firestoreProductRepository) RunPlan(ctx context.Context, plan query.Plan) ([]*entity.Product, error) {
	col := r.client.Collection(productsCollection)
	q := col.Query

	for _, p := range plan.Predicates {
		if p.Field == query.FieldDocumentID {
			q = q.Where(firestore.DocumentID, p.Op, r.docRefs(col, p.Value))
			continue
		}
		q = q.Where(p.Field, p.Op, p.Value)
	}
	for _, o := range plan.Orders {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(o.Field, dir)
	}
	if plan.Limit > 0 {
		q = q.Limit(plan.Limit)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, storeFailure("Failed to query products", productsCollection, events.OpList, nil, err)
	}
	return decodeProducts(docs), nil
}

func (r *firestoreProductRepository) docRefs(col *firestore.CollectionRef, value interface{}) interface{} {
	switch v := value.(type) {
	case []string:
		refs := make([]*firestore.DocumentRef, len(v))
		for i, id := range v {
			refs[i] = col.Doc(id)
		}
		return refs
	case string:
		return col.Doc(v)
	}
	return value
}

func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	updates := []firestore.Update{
		{Path: "title", Value: product.Title},
		{Path: "description", Value: product.Description},
		{Path: "price", Value: product.Price},
		{Path: "category", Value: product.Category},
		{Path: "condition", Value: product.Condition},
		{Path: "location", Value: product.Location},
		{Path: "images", Value: product.Images},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}

	path := docPath(productsCollection, product.ID)
	if _, err := r.client.Collection(productsCollection).Doc(product.ID).Update(ctx, updates); err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Product", err)
		}
		return storeFailure("Failed to update product", path, events.OpUpdate, product, err)
	}
	return nil
}

// Delete removes the listing and pulls its id out of the favorites of
// every user in favoritedBy, in one transaction.
func (r *firestoreProductRepository) Delete(ctx context.Context, id string) error {
	productRef := r.client.Collection(productsCollection).Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(productRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Product", err)
			}
			return err
		}

		var product entity.Product
		if err := snap.DataTo(&product); err != nil {
			return errors.Internal("Failed to parse product data", err)
		}

		userRefs := make([]*firestore.DocumentRef, 0, len(product.FavoritedBy))
		for _, uid := range product.FavoritedBy {
			userRefs = append(userRefs, r.client.Collection(usersCollection).Doc(uid))
		}
		var userSnaps []*firestore.DocumentSnapshot
		if len(userRefs) > 0 {
			if userSnaps, err = tx.GetAll(userRefs); err != nil {
				return err
			}
		}

		for _, us := range userSnaps {
			if !us.Exists() {
				continue
			}
			if err := tx.Update(us.Ref, []firestore.Update{{Path: "favorites", Value: firestore.ArrayRemove(id)}}); err != nil {
				return err
			}
		}
		return tx.Delete(productRef)
	})
	if err != nil {
		if errors.CodeOf(err) != "" {
			return err
		}
		return storeFailure("Failed to delete product", docPath(productsCollection, id), events.OpDelete, nil, err)
	}
	return nil
}

func (r *firestoreProductRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.client.Collection(productsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		return storeFailure("Failed to increment product views", docPath(productsCollection, id), events.OpUpdate,
			map[string]interface{}{"views": "increment(1)"}, err)
	}
	return nil
}
