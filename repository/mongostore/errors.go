package mongostore

import (
	"regexp"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goliatone/go-shop-auth/repository"
)

// E11000 duplicate key error collection: shop.users index: user_name_1 dup key: { user_name: "alice" }
var dupKeyRe = regexp.MustCompile(`dup key: \{ ?(\w+): "?([^"}]*?)"? ?\}`)

func duplicateKeyError(collection string, err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return nil
	}

	if m := dupKeyRe.FindStringSubmatch(err.Error()); m != nil {
		return repository.DuplicateKey(collection, m[1], m[2], err)
	}
	return repository.DuplicateKey(collection, "", "", err)
}
