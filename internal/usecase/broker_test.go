package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/repository"
)

func TestNormalizeProvider(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ibkr":                   "ibkr",
		"  Interactive Brokers ": "interactive-brokers",
		"Charles & Schwab":       "charles-schwab",
		"my_broker":              "my_broker",
		"IBKR!!!":                "ibkr",
		"--ibkr--":               "ibkr",
	}

	for raw, want := range cases {
		got, err := NormalizeProvider(raw)
		require.NoError(t, err, "input %q", raw)
		require.Equal(t, want, got, "input %q", raw)
	}

	for _, raw := range []string{"", "   ", "---", "!!!", strings.Repeat("a", 65)} {
		_, err := NormalizeProvider(raw)
		require.ErrorIs(t, err, ErrInvalidProvider, "input %q", raw)
	}
}

func TestBrokerUsecase_GetAndRecord(t *testing.T) {
	t.Parallel()

	brokerUC := NewBrokerUsecase(repository.NewMemoryBrokerConnectionRepository())
	userID := bson.NewObjectID()
	ctx := context.Background()

	_, err := brokerUC.Get(ctx, userID, "ibkr")
	require.ErrorIs(t, err, ErrBrokerNotFound)

	recorded, err := brokerUC.RecordCSVImport(ctx, userID, "Interactive Brokers")
	require.NoError(t, err)
	require.Equal(t, "interactive-brokers", recorded.Provider)
	require.Equal(t, repository.BrokerStatusCSV, recorded.Status)

	// Re-importing keeps a single connection per provider.
	again, err := brokerUC.RecordCSVImport(ctx, userID, "interactive brokers")
	require.NoError(t, err)
	require.Equal(t, recorded.ID, again.ID)

	connections, err := brokerUC.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, connections, 1)

	// Other users never see the connection.
	_, err = brokerUC.Get(ctx, bson.NewObjectID(), "interactive-brokers")
	require.ErrorIs(t, err, ErrBrokerNotFound)
}
