package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/visit-recap/internal/model"
	"github.com/Veraticus/visit-recap/internal/service"
)

var _ service.TableWriter = (*MockWriter)(nil)

// MockWriter records the tables it is asked to export. Tests use it wherever
// a service.TableWriter is needed.
type MockWriter struct {
	err    error
	tables []*model.Table
	mu     sync.Mutex
}

// NewMockWriter creates a writer that accepts every table.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records table and returns the configured error.
func (m *MockWriter) Write(ctx context.Context, table *model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = append(m.tables, table)
	return m.err
}

// SetError makes every later Write fail with err.
func (m *MockWriter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Tables returns the tables written so far, oldest first.
func (m *MockWriter) Tables() []*model.Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Table(nil), m.tables...)
}

// Last returns the most recent table, or nil.
func (m *MockWriter) Last() *model.Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tables) == 0 {
		return nil
	}
	return m.tables[len(m.tables)-1]
}
