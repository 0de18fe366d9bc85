package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/MiguelSerea/taskmanagement/internal/interfaces"
)

type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) GetPool() interfaces.PgxPoolIface {
	args := m.Called()
	return args.Get(0).(interfaces.PgxPoolIface)
}
