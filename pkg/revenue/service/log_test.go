package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/chainsafe/revenue-middleware/pkg/app/errors"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/service"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/service/mocks"
)

func TestLogService_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := mocks.NewService(t)
	svc := service.NewLog(inner, zap.New(core))
	ctx := context.Background()

	inner.EXPECT().RefreshSnapshot(mock.Anything, testAccount, revenue.EntityID(1), service.RefreshForce).Return(nil).Once()
	inner.EXPECT().LoadStream(mock.Anything, testAccount, revenue.EntityID(1), revenue.StreamAll).
		Return(apperrors.BadRequestError(nil, "unknown stream")).Once()
	inner.EXPECT().PreloadStreams(mock.Anything, testAccount, revenue.EntityID(1)).
		Return(apperrors.GeneralError(errors.New("boom"))).Once()

	require.NoError(t, svc.RefreshSnapshot(ctx, testAccount, 1, service.RefreshForce))
	require.Error(t, svc.LoadStream(ctx, testAccount, 1, revenue.StreamAll))
	require.Error(t, svc.PreloadStreams(ctx, testAccount, 1))

	assert.Equal(t, 1, logs.FilterMessage("RefreshSnapshot completed").Len())
	assert.Equal(t, 1, logs.FilterMessage("LoadStream rejected").FilterLevelExact(zapcore.InfoLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("PreloadStreams failed").FilterLevelExact(zapcore.ErrorLevel).Len())

	entry := logs.FilterMessage("RefreshSnapshot completed").All()[0]
	assert.Equal(t, "RevenueService", entry.ContextMap()["service"])
	assert.Equal(t, "7", entry.ContextMap()["account"])
}
