package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plz-territory-go/internal/auth"
	"plz-territory-go/internal/geodata"
	"plz-territory-go/internal/handler"
	"plz-territory-go/internal/region"
	"plz-territory-go/internal/storage"
)

const collection = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"plz": "10115"}, "geometry": {"type": "Point", "coordinates": [13.38, 52.53]}},
  {"type": "Feature", "properties": {"plz": "10117"}, "geometry": {"type": "Point", "coordinates": [13.39, 52.51]}}
]}`

func setupClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := storage.Open(ctx, storage.DriverSQLite, filepath.Join(t.TempDir(), "plz.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dataset, err := geodata.Parse([]byte(collection), geodata.DefaultProperty)
	require.NoError(t, err)
	svc := region.NewRegionService(db, logger, nil)
	_, err = svc.Seed(ctx, dataset.UniqueCodes())
	require.NoError(t, err)

	authService := auth.NewAuthService(auth.StaticPassword("admin123"), "test-secret", time.Hour, logger)
	router := &handler.Router{
		Auth:      handler.NewAuthHandler(authService, logger),
		Regions:   handler.NewRegionHandler(svc, logger),
		Map:       handler.NewMapHandler(svc, dataset, logger),
		Validator: authService,
		Logger:    logger,
	}
	srv := httptest.NewServer(router.Engine())
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, logger)
}

func TestAdminCallsNeedLogin(t *testing.T) {
	c := setupClient(t)
	_, err := c.Assign(context.Background(), "Müller", []string{"10115"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	c := setupClient(t)
	err := c.Login(context.Background(), "falsch")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Message)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	require.NoError(t, c.Login(ctx, "admin123"))

	result, err := c.Assign(ctx, "Müller", []string{"10115"})
	require.NoError(t, err)
	assert.True(t, result.Created)

	names, err := c.Representatives(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Müller"}, names)

	codes, err := c.RegionsFor(ctx, "Müller")
	require.NoError(t, err)
	assert.Equal(t, []string{"10115"}, codes)

	rep, err := c.Rename(ctx, "Müller", "Schulz")
	require.NoError(t, err)
	assert.Equal(t, "Schulz", rep.Name)

	rep, err = c.SetColor(ctx, "Schulz", "#ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", rep.Color)

	legend, err := c.Legend(ctx)
	require.NoError(t, err)
	require.Len(t, legend, 2)
	assert.Equal(t, "#abcdef", legend[0].Color)

	set, err := c.SetRegions(ctx, "Schulz", []string{"10117"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10115"}, set.Unassigned)

	n, err := c.Unassign(ctx, []string{"10117"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	unassigned, err := c.UnassignedRegions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"10115", "10117"}, unassigned)

	seed, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, seed.Total)

	data, err := c.Export(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	deleted, err := c.Delete(ctx, "Schulz")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(ctx, "Schulz")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestConflictIsReported(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	require.NoError(t, c.Login(ctx, "admin123"))

	_, err := c.Assign(ctx, "Müller", []string{"10115"})
	require.NoError(t, err)
	_, err = c.Assign(ctx, "Schmidt", []string{"10117"})
	require.NoError(t, err)

	_, err = c.Rename(ctx, "Müller", "Schmidt")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Schmidt")
}
