package session

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/promptgate/promptgate/pkg/domain/session/mocks"
)

func TestSweeper_SweepPrunesExpired(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	repo.On("DeleteExpiredBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(3), nil)

	sweeper := NewSweeper(repo, logrus.New(), time.Minute)
	sweeper.sweep(context.Background())

	repo.AssertExpectations(t)
}

func TestSweeper_SweepToleratesStoreErrors(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	repo.On("DeleteExpiredBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(0), assert.AnError)

	sweeper := NewSweeper(repo, logrus.New(), time.Minute)
	sweeper.sweep(context.Background())

	repo.AssertExpectations(t)
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	sweeper := NewSweeper(repo, logrus.New(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
