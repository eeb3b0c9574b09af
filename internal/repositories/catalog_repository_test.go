package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"curtain_shop_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDriver captures every query sent through database/sql and answers
// with an empty result set, so the SQL the repository builds can be asserted
// without a live database.
type recordingDriver struct{}

type recordingConn struct{}

type emptyRows struct{}

var recordedQueries []string

func init() {
	sql.Register("repositories-recording", recordingDriver{})
}

func (recordingDriver) Open(string) (driver.Conn, error) { return recordingConn{}, nil }

func (recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("recording driver supports queries only")
}
func (recordingConn) Close() error              { return nil }
func (recordingConn) Begin() (driver.Tx, error) { return nil, errors.New("recording driver supports queries only") }

func (recordingConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	recordedQueries = append(recordedQueries, query)
	return emptyRows{}, nil
}

func (emptyRows) Columns() []string         { return []string{} }
func (emptyRows) Close() error              { return nil }
func (emptyRows) Next([]driver.Value) error { return io.EOF }

func TestCatalogRepository_GetCurtains_PriceFilterUsesEffectivePrice(t *testing.T) {
	db, err := sql.Open("repositories-recording", "")
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogRepository(db)

	priceMin := int64(50000)
	priceMax := int64(150000)
	recordedQueries = nil

	curtains, total, err := repo.GetCurtains(models.CurtainFilters{
		OnlyActive: true,
		PriceMin:   &priceMin,
		PriceMax:   &priceMax,
	})
	require.NoError(t, err)
	assert.Empty(t, curtains)
	assert.Zero(t, total)

	require.Len(t, recordedQueries, 1)
	query := recordedQueries[0]

	// The filter must match the effective price, which is the lesser of the
	// list price and the discount price. A bare COALESCE would wrongly use a
	// discount that is higher than the list price.
	assert.Contains(t, query, "LEAST(c.price, COALESCE(c.discount_price, c.price)) >= $1")
	assert.Contains(t, query, "LEAST(c.price, COALESCE(c.discount_price, c.price)) <= $2")
	assert.NotContains(t, query, " COALESCE(c.discount_price, c.price) >=")
	assert.NotContains(t, query, " COALESCE(c.discount_price, c.price) <=")
}
