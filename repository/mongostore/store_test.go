package mongostore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/goliatone/go-shop-auth/repository"
	"github.com/goliatone/go-shop-auth/repository/mongostore"
)

type gadget struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name"`
	Count int    `bson:"count"`
}

func gadgetHandlers() repository.ModelHandlers[*gadget] {
	return repository.ModelHandlers[*gadget]{
		Collection: "gadgets",
		NewRecord:  func() *gadget { return &gadget{} },
		GetID:      func(g *gadget) string { return g.ID },
		SetID:      func(g *gadget, id string) { g.ID = id },
	}
}

func gadgetDoc(id, name string, count int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "count", Value: count},
	}
}

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "shop.gadgets"

	mt.Run("create assigns id", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		g, err := store.Create(ctx, &gadget{Name: "bolt"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, g.ID)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: shop.gadgets index: name_1 dup key: { name: "bolt" }`,
		}))

		_, err := store.Create(ctx, &gadget{Name: "bolt"})
		require.Error(mt, err)
		assert.True(mt, repository.IsDuplicateKey(err))

		dup, ok := repository.AsDuplicateKey(err)
		require.True(mt, ok)
		assert.Equal(mt, "name", dup.Field)
		assert.Equal(mt, "bolt", dup.Value)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, gadgetDoc("g1", "bolt", 2)))

		g, err := store.GetByID(ctx, "g1")
		require.NoError(mt, err)
		assert.Equal(mt, "bolt", g.Name)
		assert.Equal(mt, 2, g.Count)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.GetByID(ctx, "missing")
		assert.True(mt, repository.IsNotFound(err))
	})

	mt.Run("list", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			gadgetDoc("g1", "bolt", 1),
			gadgetDoc("g2", "nut", 2),
		))

		all, err := store.List(ctx, repository.All().OrderBy("count", false))
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, "nut", all[1].Name)
	})

	mt.Run("update returns stored document", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: gadgetDoc("g1", "bolt", 9)},
		))

		g, err := store.Update(ctx, "g1", repository.Fields{"count": 9})
		require.NoError(mt, err)
		assert.Equal(mt, 9, g.Count)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := store.Update(ctx, "missing", repository.Fields{"count": 9})
		assert.True(mt, repository.IsNotFound(err))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := store.DeleteByID(ctx, "missing")
		assert.True(mt, repository.IsNotFound(err))
	})

	mt.Run("delete existing", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, store.DeleteByID(ctx, "g1"))
	})

	mt.Run("find one and delete", func(mt *mtest.T) {
		store := mongostore.NewWithCollection(mt.Coll, gadgetHandlers())
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: gadgetDoc("g1", "bolt", 1)},
		))

		g, err := store.FindOneAndDelete(ctx, repository.Where("name", "bolt"))
		require.NoError(mt, err)
		assert.Equal(mt, "g1", g.ID)
	})
}
