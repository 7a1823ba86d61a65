package database

import (
	"context"

	"github.com/localnerve/backoffice-propsdb/internal/config"
	"github.com/localnerve/backoffice-propsdb/internal/store"
	"github.com/localnerve/backoffice-propsdb/internal/store/mongostore"
	"github.com/localnerve/backoffice-propsdb/internal/store/sqlstore"
	"gorm.io/gorm"
)

// OpenDocumentStore returns the document store selected by DOCUMENT_STORE and
// a function that releases it
func OpenDocumentStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (store.DocumentStore, func(context.Context) error, error) {
	if cfg.DocumentStore == "mongodb" {
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	return sqlstore.New(db), func(context.Context) error { return nil }, nil
}
