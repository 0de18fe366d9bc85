package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendWelcomeMail(email, name string) error {
	args := m.Called(email, name)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(email, name, resetLink string) error {
	args := m.Called(email, name, resetLink)
	return args.Error(0)
}
