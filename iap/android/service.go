package android

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// NewService creates a Google Play Developer API client authenticated with
// the contents of a service account JSON file.
func NewService(ctx context.Context, serviceAccountJSON []byte, opts ...option.ClientOption) (*androidpublisher.Service, error) {
	opts = append([]option.ClientOption{option.WithCredentialsJSON(serviceAccountJSON)}, opts...)

	svc, err := androidpublisher.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create android publisher client")
	}
	return svc, nil
}

// isNotFound reports whether the API rejected the lookup because the product
// does not exist.
func isNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// isUnknownToken reports whether the API rejected a purchase token. Malformed
// tokens come back as 400 and expired ones as 410.
func isUnknownToken(err error) bool {
	return hasStatus(err, http.StatusNotFound, http.StatusBadRequest, http.StatusGone)
}

func hasStatus(err error, codes ...int) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.Code == code {
			return true
		}
	}
	return false
}
