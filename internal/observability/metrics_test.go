package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

func TestInstrumentGorm(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	require.NoError(t, InstrumentGorm(db))

	before := testutil.CollectAndCount(DatabaseQueryLatency)

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	var got widget
	require.NoError(t, db.First(&got).Error)
	require.NoError(t, db.Delete(&got).Error)

	assert.Greater(t, testutil.CollectAndCount(DatabaseQueryLatency), before)
}

func TestNewSpanWithoutProvider(t *testing.T) {
	span, ctx := NewSpan(t.Context(), "test")
	require.NotNil(t, ctx)
	span.SetError(assert.AnError)
	span.End()
	assert.Len(t, span.TraceID(), 32)
}
