package android

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/option"
)

const testPackageName = "com.app.example"

// fakePlay serves the subset of the Google Play Developer API used by this
// package.
type fakePlay struct {
	products  map[string]*androidpublisher.InAppProduct
	purchases map[string]*androidpublisher.ProductPurchase // keyed by product/token
	failWith  int
}

func newFakePlay() *fakePlay {
	return &fakePlay{
		products:  map[string]*androidpublisher.InAppProduct{},
		purchases: map[string]*androidpublisher.ProductPurchase{},
	}
}

func (f *fakePlay) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /androidpublisher/v3/applications/{pkg}/inappproducts/{sku}", func(w http.ResponseWriter, r *http.Request) {
		if f.failWith != 0 {
			writeError(w, f.failWith)
			return
		}
		p, ok := f.products[r.PathValue("sku")]
		if !ok || r.PathValue("pkg") != testPackageName {
			writeError(w, http.StatusNotFound)
			return
		}
		writeJSON(w, p)
	})
	mux.HandleFunc("GET /androidpublisher/v3/applications/{pkg}/purchases/products/{product}/tokens/{token}", func(w http.ResponseWriter, r *http.Request) {
		if f.failWith != 0 {
			writeError(w, f.failWith)
			return
		}
		p, ok := f.purchases[r.PathValue("product")+"/"+r.PathValue("token")]
		if !ok || r.PathValue("pkg") != testPackageName {
			writeError(w, http.StatusNotFound)
			return
		}
		writeJSON(w, p)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": http.StatusText(code),
		},
	})
}

func newTestService(t *testing.T, f *fakePlay) *androidpublisher.Service {
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	svc, err := androidpublisher.NewService(
		context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return svc
}
