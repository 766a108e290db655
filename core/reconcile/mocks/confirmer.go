package mocks

import "github.com/stretchr/testify/mock"

// Confirmer is a mock implementation of reconcile.Confirmer
type Confirmer struct {
	mock.Mock
}

func (m *Confirmer) Confirm(prompt string) bool {
	args := m.Called(prompt)
	return args.Bool(0)
}
