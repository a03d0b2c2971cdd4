package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"plz-territory-go/internal/auth"
	"plz-territory-go/internal/geodata"
	"plz-territory-go/internal/handler"
	"plz-territory-go/internal/region"
	"plz-territory-go/internal/storage"
)

const collection = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"plz": "10115"}, "geometry": {"type": "Point", "coordinates": [13.38, 52.53]}},
  {"type": "Feature", "properties": {"plz": "10117"}, "geometry": {"type": "Point", "coordinates": [13.39, 52.51]}},
  {"type": "Feature", "properties": {"plz": "80331"}, "geometry": {"type": "Point", "coordinates": [11.57, 48.13]}}
]}`

func setupServer(t *testing.T) string {
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
	svc.SetColorFunc(func() string { return "#123456" })
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
	return srv.URL
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "hash-password", "geheim")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.True(t, auth.CheckPassword("geheim", hash))
}

func TestAdminCommandNeedsPassword(t *testing.T) {
	password = ""
	_, err := execute(t, "delete", "Müller", "--password", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), envPassword)
}

func TestArgsAreValidated(t *testing.T) {
	_, err := execute(t, "assign", "Müller")
	assert.Error(t, err)

	_, err = execute(t, "rename", "only-one")
	assert.Error(t, err)
}

func TestCommandsAgainstServer(t *testing.T) {
	url := setupServer(t)
	flags := []string{"--server", url, "--password", "admin123"}

	out, err := execute(t, append(flags, "assign", "Müller", "10115", "99999")...)
	require.NoError(t, err)
	assert.Equal(t, "created Müller (#123456)\nassigned 1 region(s) to Müller\nignored unknown: 99999\n", out)

	out, err = execute(t, append(flags, "set-regions", "Müller", "10117", "80331")...)
	require.NoError(t, err)
	assert.Equal(t, "Müller now holds 2 region(s), 1 released\n", out)

	out, err = execute(t, append(flags, "regions", "Müller")...)
	require.NoError(t, err)
	assert.Equal(t, "10117\n80331\n", out)

	out, err = execute(t, append(flags, "unassigned")...)
	require.NoError(t, err)
	assert.Equal(t, "10115\n", out)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	out, err = execute(t, append(flags, "export", "-o", path)...)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("PLZ-Zuordnung")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	out, err = execute(t, append(flags, "delete", "Müller")...)
	require.NoError(t, err)
	assert.Equal(t, "deleted Müller\n", out)

	out, err = execute(t, append(flags, "delete", "Müller")...)
	require.NoError(t, err)
	assert.Equal(t, "no representative named Müller\n", out)
}

func TestCommandReportsServerError(t *testing.T) {
	url := setupServer(t)

	_, err := execute(t, "--server", url, "--password", "falsch", "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
