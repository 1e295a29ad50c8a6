//go:build integration

package e2etest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arkiv-Network/inf-demo/internal/api"
	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/db"
	"github.com/Arkiv-Network/inf-demo/internal/db/model"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
	"github.com/Arkiv-Network/inf-demo/internal/services"
	"github.com/Arkiv-Network/inf-demo/testutil"
)

const (
	firstBlock  = 1000
	lastBlock   = 1299
	blockTiming = 12
)

var dbConfig *config.DbConfig

func TestMain(m *testing.M) {
	cfg, cleanup, err := testutil.StartMongo(100)
	if err != nil {
		log.Fatalf("failed to setup mongo container: %v", err)
	}
	dbConfig = cfg

	if err := model.Setup(context.Background(), dbConfig); err != nil {
		cleanup()
		log.Fatalf("failed to init mongo database: %v", err)
	}

	code := m.Run()
	cleanup()

	os.Exit(code)
}

type testManager struct {
	chain   *testutil.FakeChain
	service *services.Service
	api     *httptest.Server
}

func setupTestManager(t *testing.T) *testManager {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Db = *dbConfig

	chain := testutil.NewFakeChain()
	rpc := chain.Server(t)
	cfg.Eth.RPCURL = rpc.URL
	cfg.Eth.RetryInterval = 10 * time.Millisecond

	database, err := db.New(t.Context(), cfg.Db)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(context.Background())
	})

	eth, err := ethclient.New(t.Context(), &cfg.Eth)
	require.NoError(t, err)
	t.Cleanup(eth.Close)

	store := datastore.New(db.NewDbWithMetrics(database),
		datastore.WithBatchSize(cfg.Aggregator.StoreBatchSize),
		datastore.WithOwner(cfg.Db.Owner),
	)
	qm, err := queue.NewQueueManager(cfg.Queue)
	require.NoError(t, err)
	t.Cleanup(qm.Shutdown)

	svc := services.NewService(cfg, store, ethclient.NewEthClientWithMetrics(eth), qm, nil)
	server := httptest.NewServer(api.New(&cfg.Server, svc).Handler())
	t.Cleanup(server.Close)

	return &testManager{chain: chain, service: svc, api: server}
}

func (tm *testManager) getJSON(t *testing.T, path string, out any) int {
	t.Helper()

	resp, err := http.Get(tm.api.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestIndexerFlow(t *testing.T) {
	tm := setupTestManager(t)

	// one full hour of blocks that ended at least two hours ago
	hourStart := (time.Now().Add(-3*time.Hour).Unix() / 3600) * 3600
	tm.chain.AddBlocks(firstBlock, lastBlock, uint64(hourStart), blockTiming)

	var expectedTx uint64
	for n := uint64(firstBlock); n <= lastBlock; n++ {
		expectedTx += n % 7
	}

	t.Run("backfill stores blocks and aggregates the covered hour", func(t *testing.T) {
		stored, err := tm.service.Backfill(t.Context(), lastBlock-firstBlock+1)
		require.NoError(t, err)
		assert.Equal(t, lastBlock-firstBlock+1, stored)

		var body struct {
			Data []services.StatsPublic `json:"data"`
		}
		require.Equal(t, http.StatusOK, tm.getJSON(t, "/v1/stats/hourly", &body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, hourStart+3600, body.Data[0].StatsTimestamp)
		assert.Equal(t, expectedTx, body.Data[0].TotalTransactionCount)
	})

	t.Run("collectData follows new blocks", func(t *testing.T) {
		next := uint64(lastBlock + 1)
		tm.chain.AddBlocks(next, next+2, uint64(hourStart)+3600, blockTiming)

		var body struct {
			Success bool `json:"success"`
			Stored  int  `json:"stored"`
		}
		require.Equal(t, http.StatusOK, tm.getJSON(t, "/collectData", &body))
		assert.True(t, body.Success)
		assert.Equal(t, 3, body.Stored)

		// the head is already stored, nothing to do
		require.Equal(t, http.StatusOK, tm.getJSON(t, "/collectData", &body))
		assert.Equal(t, 0, body.Stored)
	})

	t.Run("latest blocks come newest first", func(t *testing.T) {
		var body struct {
			Data []services.BlockPublic `json:"data"`
		}
		require.Equal(t, http.StatusOK, tm.getJSON(t, "/v1/blocks/latest?limit=5", &body))
		require.Len(t, body.Data, 5)
		for i, b := range body.Data {
			assert.Equal(t, uint64(lastBlock+3-i), b.BlockNumber)
		}
	})

	t.Run("block by number", func(t *testing.T) {
		var body struct {
			Data services.BlockPublic `json:"data"`
		}
		require.Equal(t, http.StatusOK, tm.getJSON(t, fmt.Sprintf("/v1/blocks/%d", firstBlock), &body))
		assert.Equal(t, testutil.BlockHash(firstBlock).Hex(), body.Data.BlockHash)

		var errBody map[string]any
		assert.Equal(t, http.StatusNotFound, tm.getJSON(t, "/v1/blocks/1", &errBody))
	})
}
