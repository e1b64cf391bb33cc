package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrPermissionDenied is returned by stores that reject a read for access-control reasons.
var ErrPermissionDenied = errors.New("permission denied")

// Mongo server error codes for access-control failures.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

// IsPermissionDenied reports whether err is an access-control rejection from the store.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorCode(codeUnauthorized) || serverErr.HasErrorCode(codeAuthenticationFailed)
	}
	return false
}

func notFoundIfUnmatched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
