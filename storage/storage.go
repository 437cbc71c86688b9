package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/mongo"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/config"
	"github.com/goliatone/go-shop-auth/repository"
	"github.com/goliatone/go-shop-auth/repository/bunstore"
	"github.com/goliatone/go-shop-auth/repository/mongostore"
	"github.com/goliatone/go-shop-auth/shop"
)

// Manager exposes the repositories of the configured backend
type Manager struct {
	users    auth.Users
	products repository.Repository[*shop.Product]
	orders   repository.Repository[*shop.Order]
	closer   func(context.Context) error
}

var _ auth.RepositoryManager = (*Manager)(nil)

// Open connects to the backend selected by cfg.StoreDriver and prepares
// its schema.
func Open(ctx context.Context, cfg config.Config, logger auth.Logger) (*Manager, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		m, err := OpenMongo(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		m.closer = client.Disconnect
		logger.Info("store ready", "driver", cfg.StoreDriver, "database", cfg.MongoDatabase)
		return m, nil

	case config.DriverSQLite, config.DriverPostgres:
		open := bunstore.OpenPostgres
		if cfg.StoreDriver == config.DriverSQLite {
			open = bunstore.OpenSQLite
		}
		db, err := open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		m, err := OpenBun(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		m.closer = func(context.Context) error { return db.Close() }
		logger.Info("store ready", "driver", cfg.StoreDriver)
		return m, nil
	}

	return nil, fmt.Errorf("storage: unknown driver %q", cfg.StoreDriver)
}

// OpenBun runs the embedded migrations and builds the SQL repositories
func OpenBun(ctx context.Context, db *bun.DB) (*Manager, error) {
	if err := bunstore.Migrate(ctx, db, auth.Migrations()); err != nil {
		return nil, err
	}

	users, err := bunstore.New(db, auth.UserModelHandlers())
	if err != nil {
		return nil, err
	}
	products, err := bunstore.New(db, shop.ProductModelHandlers())
	if err != nil {
		return nil, err
	}
	orders, err := bunstore.New(db, shop.OrderModelHandlers())
	if err != nil {
		return nil, err
	}

	return &Manager{
		users:    auth.NewUsersRepository(users),
		products: products,
		orders:   orders,
		closer:   func(context.Context) error { return nil },
	}, nil
}

// OpenMongo creates the unique indexes and builds the document repositories
func OpenMongo(ctx context.Context, db *mongo.Database) (*Manager, error) {
	if err := mongostore.EnsureUniqueIndexes(ctx, db.Collection(auth.UsersCollection), auth.FieldUserName, auth.FieldEmail); err != nil {
		return nil, err
	}
	if err := mongostore.EnsureUniqueIndexes(ctx, db.Collection(shop.ProductsCollection), shop.FieldProductName); err != nil {
		return nil, err
	}

	users, err := mongostore.New(db, auth.UserModelHandlers())
	if err != nil {
		return nil, err
	}
	products, err := mongostore.New(db, shop.ProductModelHandlers())
	if err != nil {
		return nil, err
	}
	orders, err := mongostore.New(db, shop.OrderModelHandlers())
	if err != nil {
		return nil, err
	}

	return &Manager{
		users:    auth.NewUsersRepository(users),
		products: products,
		orders:   orders,
		closer:   func(context.Context) error { return nil },
	}, nil
}

func (m *Manager) Validate() error {
	if m.users == nil || m.products == nil || m.orders == nil {
		return fmt.Errorf("storage: repositories should be initialized")
	}
	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		panic(err)
	}
}

func (m *Manager) Users() auth.Users {
	return m.users
}

func (m *Manager) Products() repository.Repository[*shop.Product] {
	return m.products
}

func (m *Manager) Orders() repository.Repository[*shop.Order] {
	return m.orders
}

// Close releases the backend connection
func (m *Manager) Close(ctx context.Context) error {
	if m.closer == nil {
		return nil
	}
	return m.closer(ctx)
}
